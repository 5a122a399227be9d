package format

import (
	"bytes"
	"html/template"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<table>
{{- range .Fields}}
<tr><th>{{.Key}}</th><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- range .Tables}}
<h2>{{.Name}}</h2>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</body>
</html>
`))

type htmlField struct {
	Key   string
	Value string
}

type htmlTable struct {
	Name    string
	Columns []string
	Rows    [][]string
}

type htmlPage struct {
	Title  string
	Fields []htmlField
	Tables []htmlTable
}

// renderHTML shows scalar fields as a key/value table and every array as a
// table with one row per element. Columns follow first appearance.
func renderHTML(root *Node) (string, error) {
	p := htmlPage{Title: root.Name}
	collect(&p, "", root)

	var b bytes.Buffer
	if err := page.Execute(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

func collect(p *htmlPage, prefix string, n *Node) {
	for _, f := range n.Fields {
		key := join(prefix, f.Name)
		switch {
		case f.IsLeaf():
			p.Fields = append(p.Fields, htmlField{Key: key, Value: scalar(f.Value)})
		case f.IsArray():
			p.Tables = append(p.Tables, table(key, f))
		default:
			collect(p, key, f)
		}
	}
}

func table(name string, arr *Node) htmlTable {
	t := htmlTable{Name: name}
	index := make(map[string]int)
	var rows []map[string]string

	for _, item := range arr.Items {
		cells := make(map[string]string)
		flatten(cells, "", item, func(key string) {
			if _, ok := index[key]; !ok {
				index[key] = len(t.Columns)
				t.Columns = append(t.Columns, key)
			}
		})
		rows = append(rows, cells)
	}

	for _, cells := range rows {
		row := make([]string, len(t.Columns))
		for key, v := range cells {
			row[index[key]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func flatten(cells map[string]string, prefix string, n *Node, seen func(string)) {
	for _, f := range n.Fields {
		key := join(prefix, f.Name)
		if f.IsLeaf() {
			seen(key)
			cells[key] = scalar(f.Value)
			continue
		}
		flatten(cells, key, f, seen)
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
