package client

import (
	"strconv"

	"github.com/aravinth/respwire/internal/bufpool"
)

// encodeCommand frames args as a RESP array of bulk strings:
//
//	*<len>\r\n
//	$<len(arg_i)>\r\n<arg_i>\r\n   (for each i)
//
// Argument bytes are copied verbatim; no escaping, fully binary-safe.
func encodeCommand(args [][]byte) []byte {
	buf := bufpool.Get()
	defer bufpool.Put(buf)

	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(args)))
	buf.WriteString("\r\n")
	for _, a := range args {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(a)))
		buf.WriteString("\r\n")
		buf.Write(a)
		buf.WriteString("\r\n")
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
