package telnet

import (
	"bytes"
	"fmt"
	"strings"
)

// OptionPacket is one negotiation unit on the wire: IAC, a command verb
// (DO/DONT/WILL/WONT or SB), the option it applies to, and, for SB, the
// subnegotiation parameters closed with IAC SE.
type OptionPacket struct {
	Command    byte
	Option     byte
	Parameters []byte // SB parameters
}

func (p *OptionPacket) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(IAC)
	buf.WriteByte(p.Command)
	buf.WriteByte(p.Option)
	if p.Parameters != nil {
		buf.Write(p.Parameters)
		buf.WriteByte(IAC)
		buf.WriteByte(SE)
	}
	return buf.Bytes()
}

func (p OptionPacket) String() string {
	var builder strings.Builder
	_, _ = builder.WriteString(fmt.Sprintf("IAC %s %s",
		CodeToASCII[p.Command],
		CodeToASCII[p.Option]))
	if p.Parameters != nil {
		builder.WriteString(" ")
		builder.WriteString(convertSubOptions(p.Option, p.Parameters))
		builder.WriteString(" ")
		builder.WriteString("IAC SE")
	}
	return builder.String()
}

func convertSubOptions(option byte, parameters []byte) string {
	switch option {
	case NAWS:
		var builder strings.Builder
		for i := range parameters {
			if i > 0 {
				builder.WriteString(" ")
			}
			builder.WriteString(fmt.Sprintf("%d", parameters[i]))
		}
		return builder.String()
	default:
		var builder strings.Builder
		for i := range parameters {
			builder.WriteString(fmt.Sprintf("%q", parameters[i]))
			builder.WriteString(" ")
		}
		return strings.TrimSpace(builder.String())
	}
}
