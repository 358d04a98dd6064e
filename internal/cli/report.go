package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/restdoc/pkg/restdoc"
	"github.com/example/restdoc/pkg/source"
)

// Report is the resolved view of one declaration.
type Report struct {
	Name             string                 `json:"name" yaml:"name"`
	Kind             string                 `json:"kind" yaml:"kind"`
	File             string                 `json:"file" yaml:"file"`
	Line             int                    `json:"line" yaml:"line"`
	Valid            bool                   `json:"valid" yaml:"valid"`
	Error            string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Inherited        bool                   `json:"inherited,omitempty" yaml:"inherited,omitempty"`
	Parent           string                 `json:"parent,omitempty" yaml:"parent,omitempty"`
	ShortDescription string                 `json:"shortDescription,omitempty" yaml:"shortDescription,omitempty"`
	LongDescription  string                 `json:"longDescription,omitempty" yaml:"longDescription,omitempty"`
	Labels           []string               `json:"labels,omitempty" yaml:"labels,omitempty"`
	Tags             map[string][]TagReport `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// TagReport is one classified tag.
type TagReport struct {
	Content string         `json:"content" yaml:"content"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func newReport(decl *source.Decl, doc *restdoc.Doc) Report {
	file, line := decl.Position()
	r := Report{
		Name:             doc.Name(),
		Kind:             decl.Kind().String(),
		File:             file,
		Line:             line,
		Valid:            doc.IsValid(),
		Inherited:        doc.IsInherited(),
		ShortDescription: doc.ShortDescription(),
		LongDescription:  doc.LongDescription(),
	}
	if err := doc.Err(); err != nil {
		r.Error = err.Error()
	}
	if p := doc.Parent(); p != nil {
		r.Parent = p.Name()
	}
	if labels := doc.Labels(); len(labels) > 0 {
		r.Labels = labels
	}

	for _, key := range doc.TagKeys() {
		if r.Tags == nil {
			r.Tags = make(map[string][]TagReport)
		}
		for _, tag := range doc.TagGroup(key) {
			r.Tags[key] = append(r.Tags[key], newTagReport(tag))
		}
	}
	return r
}

func newTagReport(tag restdoc.Tag) TagReport {
	tr := TagReport{Content: tag.Content()}
	switch t := tag.(type) {
	case *restdoc.QueryTag:
		tr.Fields = map[string]any{
			"param":    t.Param,
			"required": t.Required,
		}
		setIf(tr.Fields, "type", t.Type)
		setIf(tr.Fields, "description", t.Description)
		if t.HasDefault {
			tr.Fields["default"] = t.Default
		}
	case *restdoc.ParamTag:
		tr.Fields = map[string]any{"variable": t.Variable}
		setIf(tr.Fields, "type", t.Type)
		setIf(tr.Fields, "description", t.Description)
	}
	return tr
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// reportWriter renders reports in one output format.
type reportWriter interface {
	Write(w io.Writer, reports []Report) error
}

func newReportWriter(format string) (reportWriter, error) {
	switch format {
	case "json":
		return jsonWriter{}, nil
	case "yaml", "yml":
		return yamlWriter{}, nil
	case "text", "":
		return textWriter{}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

type jsonWriter struct{}

func (jsonWriter) Write(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

type yamlWriter struct{}

func (yamlWriter) Write(w io.Writer, reports []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}

var (
	validMark   = color.New(color.FgGreen, color.Bold)
	invalidMark = color.New(color.FgRed, color.Bold)
	tagColor    = color.New(color.FgCyan)
	dimColor    = color.New(color.Faint)
)

type textWriter struct{}

func (textWriter) Write(w io.Writer, reports []Report) error {
	var b strings.Builder
	for _, r := range reports {
		if r.Valid {
			fmt.Fprintf(&b, "%s %s", validMark.Sprint("✓"), r.Name)
			if r.ShortDescription != "" {
				fmt.Fprintf(&b, "  %s", r.ShortDescription)
			}
		} else {
			fmt.Fprintf(&b, "%s %s  %s", invalidMark.Sprint("✗"), r.Name, dimColor.Sprint(r.Error))
		}
		b.WriteString("\n")

		if r.Parent != "" {
			fmt.Fprintf(&b, "    parent: %s\n", r.Parent)
		}
		if len(r.Labels) > 0 {
			fmt.Fprintf(&b, "    labels: %s\n", strings.Join(r.Labels, ", "))
		}
		for _, key := range sortedKeys(r.Tags) {
			for _, tag := range r.Tags[key] {
				fmt.Fprintf(&b, "    %s %s\n", tagColor.Sprint("@"+key), tag.Content)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sortedKeys(m map[string][]TagReport) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
