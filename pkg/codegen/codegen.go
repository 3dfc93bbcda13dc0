/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codegen.go
Description: Code skeleton generator. Turns an inferred protocol model and a decode trace
into a rough C++ outline for sending and decoding the protocol with IRremoteESP8266:
named timing constants, a send function and a decode function. The output is an
authoring aid for a human, never compiled or executed by irprobe itself.
*/

package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kleascm/irprobe/pkg/inference"
)

const (
	// DefaultName is used when no usable protocol name is given
	DefaultName = "XYZ"

	// wideThreshold is the number of bits that still fits a uint64_t
	wideThreshold = 64

	// guessedGap and guessedFrequency are placeholders, not inferred values
	guessedGap       = 100000
	guessedFrequency = 38000
)

// Banner heads every generated outline
var Banner = []string{
	"// WARNING: This probably isn't directly usable. It's a guide only.",
	"// See https://github.com/crankyoldgit/IRremoteESP8266/wiki/Adding-support-for-a-new-IR-protocol",
	"// for details on how to use this code.",
}

// Skeleton is the generated outline
type Skeleton struct {
	Name          string   `json:"name" yaml:"name"`             // Sanitised protocol identifier, e.g. "Xyz"
	TotalBits     int      `json:"total_bits" yaml:"total_bits"` // Bits recovered across all fragments
	Wide          bool     `json:"wide" yaml:"wide"`             // More bits than a uint64_t can hold
	Defines       []string `json:"defines" yaml:"defines"`
	SendOutline   []string `json:"send_outline" yaml:"send_outline"`
	DecodeOutline []string `json:"decode_outline" yaml:"decode_outline"`
}

// Lines joins the banner and every block, separated by blank lines
func (s *Skeleton) Lines() []string {
	out := make([]string, 0, len(Banner)+len(s.Defines)+len(s.SendOutline)+len(s.DecodeOutline)+3)
	out = append(out, Banner...)
	out = append(out, "")
	out = append(out, s.Defines...)
	out = append(out, "")
	out = append(out, s.SendOutline...)
	out = append(out, "")
	out = append(out, s.DecodeOutline...)
	return out
}

// String returns the whole outline as one block of text
func (s *Skeleton) String() string {
	return strings.Join(s.Lines(), "\n") + "\n"
}

// names holds every identifier derived from the protocol name
type names struct {
	camel string // Xyz
	upper string // XYZ
}

func (n names) k(suffix string) string {
	return "k" + n.camel + suffix
}

// Generate builds the outline for model and trace under protocolName.
// It is a pure function of its inputs.
func Generate(model *inference.ProtocolModel, trace *inference.DecodeTrace, protocolName string) *Skeleton {
	n := deriveNames(protocolName)
	total := trace.TotalBits()

	s := &Skeleton{
		Name:      n.camel,
		TotalBits: total,
		Wide:      total > wideThreshold,
	}
	s.Defines = defines(n, model, trace, s.Wide)
	s.SendOutline = sendOutline(n, model, trace, s.Wide)
	s.DecodeOutline = decodeOutline(n, model, trace, s.Wide)
	return s
}

// deriveNames keeps letters and digits only; the first letter is upper-cased
// and the rest lower-cased for the constant prefix
func deriveNames(protocolName string) names {
	var clean strings.Builder
	for _, r := range protocolName {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			clean.WriteRune(r)
		}
	}
	id := clean.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = DefaultName + id
	}
	return names{
		camel: strings.ToUpper(id[:1]) + strings.ToLower(id[1:]),
		upper: strings.ToUpper(id),
	}
}

// constType picks the narrowest IRremoteESP8266 integer type for value
func constType(value int) string {
	if value > 0xFFFF {
		return "uint32_t"
	}
	return "uint16_t"
}

func constant(name string, value int) string {
	return fmt.Sprintf("const %s %s = %d;", constType(value), name, value)
}

func defines(n names, m *inference.ProtocolModel, trace *inference.DecodeTrace, wide bool) []string {
	total := trace.TotalBits()
	out := []string{
		fmt.Sprintf("// Margin used for matching: %d usecs", m.Margin),
		constant(n.k("HdrMark"), m.HdrMark),
		constant(n.k("BitMark"), m.BitMark),
		constant(n.k("HdrSpace"), m.HdrSpace),
		constant(n.k("OneSpace"), m.OneSpace),
		constant(n.k("ZeroSpace"), m.ZeroSpace),
	}
	for i, g := range m.Gaps {
		out = append(out, constant(n.k(fmt.Sprintf("SpaceGap%d", i+1)), g.Value))
	}
	out = append(out,
		constant(n.k("Freq"), guessedFrequency)+"  // Hz. (Guessing the most common frequency.)",
		fmt.Sprintf("const uint16_t %s = %d;", n.k("Bits"), total),
	)
	if wide {
		out = append(out, fmt.Sprintf("const uint16_t %s = %d;", n.k("StateLength"), (total+7)/8))
	}
	out = append(out, fmt.Sprintf("const uint16_t %s = %d;", n.k("Overhead"), overhead(trace)))
	return out
}

// overhead counts the captured entries that do not carry a data bit
func overhead(trace *inference.DecodeTrace) int {
	if n := len(trace.Steps) - 2*trace.TotalBits(); n > 0 {
		return n
	}
	return 0
}

// gapName returns the constant for the gap that matches usecs, or the first gap
func gapName(n names, m *inference.ProtocolModel, usecs int) string {
	for i, g := range m.Gaps {
		if inference.Match(usecs, g.Value, m.Margin) {
			return n.k(fmt.Sprintf("SpaceGap%d", i+1))
		}
	}
	return n.k("SpaceGap1")
}

func sendOutline(n names, m *inference.ProtocolModel, trace *inference.DecodeTrace, wide bool) []string {
	out := make([]string, 0, 32)
	out = append(out,
		fmt.Sprintf("#if SEND_%s", n.upper),
		"// Function should be safe up to 64 bits.",
		fmt.Sprintf("void IRsend::send%s(const uint64_t data, const uint16_t nbits, const uint16_t repeat) {", n.camel),
		fmt.Sprintf("  enableIROut(%s);", n.k("Freq")),
		"  for (uint16_t r = 0; r <= repeat; r++) {",
	)

	for _, seg := range trace.Segments {
		switch seg.Kind {
		case inference.SegmentHeaderMark:
			out = append(out, "    // Header", fmt.Sprintf("    mark(%s);", n.k("HdrMark")))
		case inference.SegmentHeaderSpace:
			out = append(out, fmt.Sprintf("    space(%s);", n.k("HdrSpace")))
		case inference.SegmentData:
			if f := trace.Fragments[seg.Fragment]; f.Len() > 0 {
				out = append(out, sendData(n, f)...)
			}
		case inference.SegmentGap:
			out = append(out, "    // Gap", fmt.Sprintf("    space(%s);", gapName(n, m, seg.Value)))
		}
	}

	out = append(out,
		fmt.Sprintf("    space(%d);  // A 100%% made up guess of the gap between messages.", guessedGap),
		"  }",
		"}",
		fmt.Sprintf("#endif  // SEND_%s", n.upper),
	)

	if wide {
		out = append(out, "")
		out = append(out, wideSendOutline(n, trace)...)
	}
	return out
}

func sendData(n names, f inference.Fragment) []string {
	return []string{
		"    // Data",
		fmt.Sprintf("    // e.g. data = %s, nbits = %d", f.HexMSB(), f.Len()),
		fmt.Sprintf("    sendData(%s, %s, %s, %s, data, nbits, true);",
			n.k("BitMark"), n.k("OneSpace"), n.k("BitMark"), n.k("ZeroSpace")),
		"    // Footer",
		fmt.Sprintf("    mark(%s);", n.k("BitMark")),
	}
}

func wideSendOutline(n names, trace *inference.DecodeTrace) []string {
	return []string{
		"// DANGER: More than 64 bits detected. A uint64_t for 'data' won't work!",
		"// Alternative >64bit function to send messages",
		fmt.Sprintf("#if SEND_%s", n.upper),
		fmt.Sprintf("void IRsend::send%s(const uint8_t data[], const uint16_t nbytes, const uint16_t repeat) {", n.camel),
		fmt.Sprintf("  // nbytes should typically be %s", n.k("StateLength")),
		"  // data should typically be:",
		fmt.Sprintf("  //   uint8_t data[%s] = {%s};", n.k("StateLength"), byteList(trace.Bits)),
		"  // data[] is assumed to be in MSB order for this code.",
		"  for (uint16_t r = 0; r <= repeat; r++) {",
		fmt.Sprintf("    sendGeneric(%s, %s,", n.k("HdrMark"), n.k("HdrSpace")),
		fmt.Sprintf("                %s, %s,", n.k("BitMark"), n.k("OneSpace")),
		fmt.Sprintf("                %s, %s,", n.k("BitMark"), n.k("ZeroSpace")),
		fmt.Sprintf("                %s,", n.k("BitMark")),
		fmt.Sprintf("                %d,  // 100%% made-up guess at the message gap.", guessedGap),
		"                data, nbytes,",
		fmt.Sprintf("                %s,  // Complete guess of the modulation frequency.", n.k("Freq")),
		"                true, 0, 50);",
		"  }",
		"}",
		fmt.Sprintf("#endif  // SEND_%s", n.upper),
	}
}

// byteList renders bits as "0xAB, 0xCD, ..." in MSB-first byte order
func byteList(bits string) string {
	bytes := inference.BitsToBytes(bits)
	parts := make([]string, len(bytes))
	for i, b := range bytes {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return strings.Join(parts, ", ")
}

func decodeOutline(n names, m *inference.ProtocolModel, trace *inference.DecodeTrace, wide bool) []string {
	out := make([]string, 0, 48)
	out = append(out,
		fmt.Sprintf("#if DECODE_%s", n.upper),
		"// Function should be safe up to 64 bits.",
		fmt.Sprintf("bool IRrecv::decode%s(decode_results *results, uint16_t offset, const uint16_t nbits, const bool strict) {", n.camel),
		fmt.Sprintf("  if (results->rawlen < 2 * nbits + %s - offset)", n.k("Overhead")),
		"    return false;  // Too short a message to match.",
		fmt.Sprintf("  if (strict && nbits != %s)", n.k("Bits")),
		"    return false;",
		"",
		"  uint64_t data = 0;",
		"  match_result_t data_result;",
		"",
	)

	for _, seg := range trace.Segments {
		switch seg.Kind {
		case inference.SegmentHeaderMark:
			out = append(out,
				"  // Header",
				fmt.Sprintf("  if (!matchMark(results->rawbuf[offset++], %s))", n.k("HdrMark")),
				"    return false;",
			)
		case inference.SegmentHeaderSpace:
			out = append(out,
				fmt.Sprintf("  if (!matchSpace(results->rawbuf[offset++], %s))", n.k("HdrSpace")),
				"    return false;",
			)
		case inference.SegmentData:
			if f := trace.Fragments[seg.Fragment]; f.Len() > 0 {
				out = append(out, decodeData(n, f)...)
			}
		case inference.SegmentGap:
			out = append(out,
				"  // Gap",
				fmt.Sprintf("  if (!matchSpace(results->rawbuf[offset++], %s))", gapName(n, m, seg.Value)),
				"    return false;",
			)
		}
	}

	out = append(out,
		"",
		"  // Success",
		fmt.Sprintf("  results->decode_type = decode_type_t::%s;", n.upper),
		"  results->bits = nbits;",
		"  results->value = data;",
		"  results->command = 0;",
		"  results->address = 0;",
		"  return true;",
		"}",
		fmt.Sprintf("#endif  // DECODE_%s", n.upper),
	)

	if wide {
		out = append(out, "")
		out = append(out, wideDecodeOutline(n)...)
	}
	return out
}

func decodeData(n names, f inference.Fragment) []string {
	return []string{
		fmt.Sprintf("  // Data (%d bits)", f.Len()),
		"  data_result = matchData(&(results->rawbuf[offset]), nbits,",
		fmt.Sprintf("                          %s, %s,", n.k("BitMark"), n.k("OneSpace")),
		fmt.Sprintf("                          %s, %s);", n.k("BitMark"), n.k("ZeroSpace")),
		"  offset += data_result.used;",
		"  if (data_result.success == false) return false;  // Fail",
		"  data <<= nbits;",
		"  data |= data_result.data;",
		"  // Footer",
		fmt.Sprintf("  if (!matchMark(results->rawbuf[offset++], %s))", n.k("BitMark")),
		"    return false;",
	}
}

func wideDecodeOutline(n names) []string {
	return []string{
		"// Note: This should be 64+ bit safe.",
		fmt.Sprintf("#if DECODE_%s", n.upper),
		fmt.Sprintf("bool IRrecv::decode%s(decode_results *results, uint16_t offset, const uint16_t nbits, const bool strict) {", n.camel),
		fmt.Sprintf("  if (results->rawlen < 2 * nbits + %s - offset)", n.k("Overhead")),
		"    return false;  // Too short a message to match.",
		fmt.Sprintf("  if (strict && nbits != %s)", n.k("Bits")),
		"    return false;",
		"",
		"  uint16_t used = matchGeneric(results->rawbuf + offset, results->state,",
		"                               results->rawlen - offset, nbits,",
		fmt.Sprintf("                               %s, %s,", n.k("HdrMark"), n.k("HdrSpace")),
		fmt.Sprintf("                               %s, %s,", n.k("BitMark"), n.k("OneSpace")),
		fmt.Sprintf("                               %s, %s,", n.k("BitMark"), n.k("ZeroSpace")),
		fmt.Sprintf("                               %s, kUseDefTol, 0, true);", n.k("BitMark")),
		"  if (used == 0) return false;  // Failed to match.",
		"",
		"  // Success",
		fmt.Sprintf("  results->decode_type = decode_type_t::%s;", n.upper),
		"  results->bits = nbits;",
		"  return true;",
		"}",
		fmt.Sprintf("#endif  // DECODE_%s", n.upper),
	}
}
