package format

import (
	"bytes"
	"encoding/xml"
)

// renderXML uses the JSON field names as element names. Array elements are
// wrapped in an element named by the array's ItemName.
func renderXML(root *Node) (string, error) {
	var b bytes.Buffer
	b.WriteString(xml.Header)

	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := writeXML(enc, root.Name, root); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func writeXML(enc *xml.Encoder, name string, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch {
	case n.IsLeaf():
		if err := enc.EncodeToken(xml.CharData(scalar(n.Value))); err != nil {
			return err
		}
	case n.IsArray():
		for _, item := range n.Items {
			if err := writeXML(enc, n.ItemName, item); err != nil {
				return err
			}
		}
	default:
		for _, f := range n.Fields {
			if err := writeXML(enc, f.Name, f); err != nil {
				return err
			}
		}
	}

	return enc.EncodeToken(start.End())
}
