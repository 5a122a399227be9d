package format

import (
	"bytes"
	"encoding/json"
)

func renderJSON(root *Node) (string, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, root); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	out.WriteByte('\n')
	return out.String(), nil
}

func writeJSON(b *bytes.Buffer, n *Node) error {
	switch {
	case n.IsLeaf():
		if s, ok := n.Value.(string); ok {
			enc, err := json.Marshal(s)
			if err != nil {
				return err
			}
			b.Write(enc)
			return nil
		}
		b.WriteString(scalar(n.Value))

	case n.IsArray():
		b.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')

	default:
		b.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteByte(':')
			if err := writeJSON(b, f); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}
