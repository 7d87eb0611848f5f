package codec

import (
	"fmt"
	"strings"
)

// strftime directive -> Go layout element. Parsing uses the non-padded forms so
// "5.1.2010" and "05.01.2010" are both accepted; formatting always pads.
var directives = map[byte]struct{ parse, format string }{
	'Y': {"2006", "2006"},
	'y': {"06", "06"},
	'm': {"1", "01"},
	'd': {"2", "02"},
	'e': {"_2", "_2"},
	'H': {"15", "15"},
	'I': {"3", "03"},
	'M': {"4", "04"},
	'S': {"5", "05"},
	'f': {"000000", "000000"},
	'j': {"002", "002"},
	'b': {"Jan", "Jan"},
	'h': {"Jan", "Jan"},
	'B': {"January", "January"},
	'a': {"Mon", "Mon"},
	'A': {"Monday", "Monday"},
	'p': {"PM", "PM"},
	'z': {"-0700", "-0700"},
	'Z': {"MST", "MST"},
}

// Layout translates a strftime-style format into a Go time layout. %Y needs
// exactly four digits and %y two, so "20.10.10" fails "%d.%m.%Y" and matches
// "%d.%m.%y". %f must follow a "." or "," in the format.
func Layout(format string, forParse bool) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", fmt.Errorf("%w: dangling %% in %q", ErrInvalidFormat, format)
		}
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}
		d, ok := directives[format[i]]
		if !ok {
			return "", fmt.Errorf("%w: unsupported directive %%%c in %q", ErrInvalidFormat, format[i], format)
		}
		if forParse {
			b.WriteString(d.parse)
		} else {
			b.WriteString(d.format)
		}
	}
	return b.String(), nil
}
