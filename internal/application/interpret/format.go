package interpret

import (
	"regexp"
	"strings"
)

var (
	headerMarks   = regexp.MustCompile(`#+\s*`)
	leadingHashes = regexp.MustCompile(`^#+\s*`)
	leadingBullet = regexp.MustCompile(`^[-*]\s*`)
	leadingNumber = regexp.MustCompile(`^(\d+)\.\s*`)
)

// CleanText strips markdown decoration from a section before display.
func CleanText(text string) string {
	text = headerMarks.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "* ", "")
	text = strings.ReplaceAll(text, "- ", "")
	return strings.TrimSpace(text)
}

// BlockKind enum
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockItem       BlockKind = "item"
	BlockNumbered   BlockKind = "numbered"
	BlockParagraph  BlockKind = "paragraph"
	BlockBreak      BlockKind = "break"
)

// Block is one rendered line of a diet plan.
type Block struct {
	Kind   BlockKind `json:"kind"`
	Number string    `json:"number,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// FormatPlan turns markdown-ish plan text into display blocks, one per line.
func FormatPlan(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			blocks = append(blocks, Block{Kind: BlockBreak})
		case strings.HasPrefix(line, "###"):
			title := leadingHashes.ReplaceAllString(line, "")
			blocks = append(blocks, Block{Kind: BlockHeading, Text: strings.ReplaceAll(title, "**", "")})
		case len(line) >= 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			blocks = append(blocks, Block{Kind: BlockSubheading, Text: strings.ReplaceAll(line, "**", "")})
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*"):
			item := leadingBullet.ReplaceAllString(line, "")
			blocks = append(blocks, Block{Kind: BlockItem, Text: strings.ReplaceAll(item, "**", "")})
		case leadingNumber.MatchString(line):
			m := leadingNumber.FindStringSubmatch(line)
			rest := strings.TrimPrefix(line, m[0])
			blocks = append(blocks, Block{Kind: BlockNumbered, Number: m[1], Text: strings.ReplaceAll(rest, "**", "")})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: strings.ReplaceAll(line, "**", "")})
		}
	}
	return blocks
}
