package tagged

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Block is one `tokens { ... }` record.
type Block struct {
	Items []*Item `parser:"\"tokens\" \"{\" @@* \"}\""`
}

// Item is either a field (`name: "value"`) or a nested group
// (`name { ... }`).
type Item struct {
	Name  string `parser:"@Ident"`
	Value *Value `parser:"@@"`
}

type Value struct {
	Text  *string `parser:"  \":\" @String"`
	Items []*Item `parser:"| \"{\" @@* \"}\""`
}

type Sequence struct {
	Blocks []*Block `parser:"@@*"`
}

var (
	tokensLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Punct", Pattern: `[{}:]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})
	options = []participle.Option{
		participle.Lexer(tokensLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	}
	blockParser    = participle.MustBuild[Block](options...)
	sequenceParser = participle.MustBuild[Sequence](options...)
)

func ParseBlock(s string) (*Block, error) {
	return blockParser.ParseString("", s)
}

// ParseSequence parses space-joined blocks.
func ParseSequence(s string) ([]*Block, error) {
	seq, err := sequenceParser.ParseString("", s)
	if err != nil {
		return nil, err
	}
	return seq.Blocks, nil
}

// Class is the name of the outer group, or "" for bare name tokens.
func (b *Block) Class() string {
	if len(b.Items) == 1 && b.Items[0].Value.Text == nil {
		return b.Items[0].Name
	}
	return ""
}

// Get follows path through nested groups to a field value.
func (b *Block) Get(path ...string) (string, bool) {
	items := b.Items
	for i, name := range path {
		var found *Item
		for _, it := range items {
			if it.Name == name {
				found = it
				break
			}
		}
		if found == nil {
			return "", false
		}
		if i == len(path)-1 {
			if found.Value.Text == nil {
				return "", false
			}
			return *found.Value.Text, true
		}
		items = found.Value.Items
	}
	return "", false
}

// Fields flattens the block into dotted paths.
func (b *Block) Fields() map[string]string {
	out := map[string]string{}
	flatten("", b.Items, out)
	return out
}

func flatten(prefix string, items []*Item, out map[string]string) {
	for _, it := range items {
		key := it.Name
		if prefix != "" {
			key = prefix + "." + it.Name
		}
		if it.Value.Text != nil {
			out[key] = *it.Value.Text
			continue
		}
		flatten(key, it.Value.Items, out)
	}
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// String renders the block in canonical form.
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("tokens {")
	writeItems(&sb, b.Items)
	sb.WriteString(" }")
	return sb.String()
}

func writeItems(sb *strings.Builder, items []*Item) {
	for _, it := range items {
		sb.WriteByte(' ')
		sb.WriteString(it.Name)
		if it.Value.Text != nil {
			sb.WriteString(`: "`)
			sb.WriteString(escaper.Replace(*it.Value.Text))
			sb.WriteByte('"')
			continue
		}
		sb.WriteString(" {")
		writeItems(sb, it.Value.Items)
		sb.WriteString(" }")
	}
}
