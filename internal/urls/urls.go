package urls

// AVMInterfaces is AVM's page for the documented box interfaces: the
// session id login and the TR-064 services, including X_AVM-DE_OnTel.
const AVMInterfaces = "https://avm.de/service/schnittstellen/"
