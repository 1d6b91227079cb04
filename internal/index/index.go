package index

import (
	"bytes"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/skaphos/spacesync/internal/model"
)

const (
	keyName   = "name"
	keyCode   = "code"
	keyRemote = "remote"
	keyBranch = "branch"
	keyStatus = "status"
)

// Markers delimit the index block inside the document.
type Markers struct {
	Start string
	End   string
}

// ExtractBlock returns the text between the start and end markers with an
// optional fenced code block removed.
func ExtractBlock(content string, m Markers) (string, error) {
	start := strings.Index(content, m.Start)
	if m.Start == "" || start < 0 {
		return "", &FormatError{Reason: fmt.Sprintf("start marker %q not found", m.Start)}
	}
	rest := content[start+len(m.Start):]
	end := strings.Index(rest, m.End)
	if m.End == "" || end < 0 {
		return "", &FormatError{Reason: fmt.Sprintf("end marker %q not found after start marker", m.End)}
	}
	return stripFence(rest[:end]), nil
}

func stripFence(block string) string {
	block = strings.TrimSpace(block)
	if strings.HasPrefix(block, "```") {
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			block = block[nl+1:]
		} else {
			block = ""
		}
		block = strings.TrimSpace(block)
		block = strings.TrimSpace(strings.TrimSuffix(block, "```"))
	}
	return block
}

// Parse locates the index block in content and decodes its entries. The block
// is a sequence of flat key/value mappings, each identified by a unique name.
func Parse(content string, m Markers) ([]model.IndexEntry, error) {
	block, err := ExtractBlock(content, m)
	if err != nil {
		return nil, err
	}
	return ParseBlock(block)
}

// ParseBlock decodes the interior of an index block. Blocks that are not
// valid YAML, such as an unquoted value containing ": ", are read line by
// line instead (see parseLines).
func ParseBlock(block string) ([]model.IndexEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return parseLines(block)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.SequenceNode {
		return nil, &FormatError{Reason: fmt.Sprintf("line %d: expected a list of entries", root.Line)}
	}

	entries := make([]model.IndexEntry, 0, len(root.Content))
	lines := make([]int, 0, len(root.Content))
	for _, item := range root.Content {
		entry, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		lines = append(lines, item.Line)
	}
	if err := checkNames(entries, lines); err != nil {
		return nil, err
	}
	return entries, nil
}

// checkNames rejects nameless and duplicate entries. lines[i] is the source
// line of entries[i].
func checkNames(entries []model.IndexEntry, lines []int) error {
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if entry.Name == "" {
			return &FormatError{Reason: fmt.Sprintf("line %d: entry has no name", lines[i])}
		}
		if first, dup := seen[entry.Name]; dup {
			return &FormatError{Reason: fmt.Sprintf("line %d: duplicate entry name %q (first defined on line %d)", lines[i], entry.Name, first)}
		}
		seen[entry.Name] = lines[i]
	}
	return nil
}

func decodeEntry(item *yaml.Node) (model.IndexEntry, error) {
	var entry model.IndexEntry
	if item.Kind != yaml.MappingNode {
		return entry, &FormatError{Reason: fmt.Sprintf("line %d: entry must be a set of key: value lines", item.Line)}
	}
	for i := 0; i+1 < len(item.Content); i += 2 {
		key, value := item.Content[i], item.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			if isKnownKey(key.Value) {
				return entry, &FormatError{Reason: fmt.Sprintf("line %d: value of %q must be a single value", value.Line, key.Value)}
			}
			entry.Extra = append(entry.Extra, model.Field{Key: key.Value, Value: rawValue(value)})
			continue
		}
		v := strings.TrimSpace(value.Value)
		if isNull(value) {
			v = ""
		}
		setField(&entry, key.Value, v)
	}
	return entry, nil
}

func isKnownKey(key string) bool {
	switch key {
	case keyName, keyCode, keyRemote, keyBranch, keyStatus:
		return true
	}
	return false
}

func setField(entry *model.IndexEntry, key, value string) {
	switch key {
	case keyName:
		entry.Name = value
	case keyCode:
		entry.Path = value
	case keyRemote:
		entry.Remote = value
	case keyBranch:
		entry.Branch = value
	case keyStatus:
		entry.Status = value
	default:
		entry.Extra = append(entry.Extra, model.Field{Key: key, Value: value})
	}
}

// rawValue keeps a flow collection under an unknown key as its inline text,
// e.g. "[cli, go]". Block collections are dropped to an empty value, the same
// result the line reader gives for them.
func rawValue(n *yaml.Node) string {
	if n.Style&yaml.FlowStyle == 0 {
		return ""
	}
	text, err := encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{n}})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func isNull(n *yaml.Node) bool {
	return n.Tag == "!!null" || (n.Kind == yaml.ScalarNode && n.Value == "" && n.Style == 0)
}

// Marshal renders entries in index block syntax. Known keys come first in a
// fixed order; unknown keys follow in their original order.
func Marshal(entries []model.IndexEntry) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range entries {
		m := &yaml.Node{Kind: yaml.MappingNode}
		addPair(m, keyName, e.Name, false)
		addPair(m, keyCode, e.Path, true)
		addPair(m, keyRemote, e.Remote, true)
		addPair(m, keyBranch, e.Branch, true)
		addPair(m, keyStatus, e.Status, true)
		for _, f := range e.Extra {
			addPair(m, f.Key, f.Value, false)
		}
		seq.Content = append(seq.Content, m)
	}
	return encode(seq)
}

const statusHint = "# or: on-hold, archived, experiment"

// Suggest renders unindexed repositories as ready-to-paste index entries.
func Suggest(repos []model.UnindexedRepository, branch string) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range repos {
		m := &yaml.Node{Kind: yaml.MappingNode}
		addPair(m, keyName, r.Name, false)
		addPair(m, keyCode, strings.TrimRight(r.Path, "/")+"/", false)
		addPair(m, keyRemote, r.Remote.String(), true)
		addPair(m, keyBranch, branch, true)
		addPair(m, keyStatus, "active", false)
		m.Content[len(m.Content)-1].LineComment = statusHint
		seq.Content = append(seq.Content, m)
	}
	return encode(seq)
}

func addPair(m *yaml.Node, key, value string, omitEmpty bool) {
	if omitEmpty && value == "" {
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

func encode(n *yaml.Node) (string, error) {
	if len(n.Content) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
