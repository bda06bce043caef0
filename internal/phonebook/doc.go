// Package phonebook parses FRITZ!Box phonebook exports.
//
// A phonebook export is an XML document of contact elements:
//
//	<phonebooks><phonebook>
//	  <contact>
//	    <person>
//	      <realName>Alice</realName>
//	      <imageURL>file:///var/media/ftp/FRITZ/fonpix/alice.jpg</imageURL>
//	    </person>
//	    <telephony>
//	      <number type="home">0301234567</number>
//	      <number type="mobile">01701234567</number>
//	    </telephony>
//	  </contact>
//	</phonebook></phonebooks>
//
// Parse streams the document and returns a Phonebook keyed by display
// name. Malformed input fails with a *ParseError as soon as the decoder
// sees it.
//
// Phonebooks can be rendered as text (FormatCompact, FormatDetailed) or
// exported as vCard 4.0 (WriteVCards).
package phonebook
