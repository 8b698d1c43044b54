package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/model"
)

// RenderJSON writes v as indented JSON
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// KeywordMarkdown renders a keyword report as Markdown
func KeywordMarkdown(report *model.KeywordReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Keyword analysis: %s\n\n", report.Spec)
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Source: `%s`\n", report.SourceFile)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Sentences: %s (%d analyzed)\n", report.Filter, report.Sentences)
	fmt.Fprintf(&b, "- Distinct keywords: %d\n", report.Vocabulary)
	fmt.Fprintf(&b, "- Threshold: %s, top %d\n\n", FormatThreshold(report.Threshold), report.TopN)

	for _, sel := range report.Selections() {
		fmt.Fprintf(&b, "## %s\n\n", sel.Title)
		conflict := sel.Name == keyword.SelectionMostConflicting
		entries := ChartEntries(sel, report.TopN, conflict)
		if len(entries) == 0 {
			b.WriteString("_No keywords selected._\n\n")
			continue
		}

		b.WriteString("| Keyword | Total |")
		for _, c := range model.AllCategories {
			fmt.Fprintf(&b, " %s |", c)
		}
		if conflict {
			b.WriteString(" Dominant | Weight |")
		}
		b.WriteString("\n|---|---:|")
		for range model.AllCategories {
			b.WriteString("---:|")
		}
		if conflict {
			b.WriteString("---|---:|")
		}
		b.WriteString("\n")

		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %d |", escapeCell(e.Keyword), e.Counts.Total)
			for _, c := range model.AllCategories {
				fmt.Fprintf(&b, " %d |", e.Counts.Get(c))
			}
			if conflict {
				fmt.Fprintf(&b, " %s | %.2f |", categoryList(e.Dominant), e.Weight)
			}
			b.WriteString("\n")
		}
		if len(sel.Entries) > len(entries) {
			fmt.Fprintf(&b, "\n%d more not shown.\n", len(sel.Entries)-len(entries))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderKeywordMarkdown writes the Markdown form of a keyword report
func (r *Renderer) RenderKeywordMarkdown(report *model.KeywordReport, path string) error {
	return os.WriteFile(path, []byte(KeywordMarkdown(report)), 0644)
}

// DistributionMarkdown renders a distribution report as Markdown
func DistributionMarkdown(report *model.DistributionReport) string {
	var b strings.Builder

	b.WriteString("# Rule vs. non-rule keyword distributions\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Sentence groups\n\n")
	b.WriteString("| Specification | Rule | Non-rule |\n|---|---:|---:|\n")
	for _, g := range report.Groups {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", escapeCell(g.Spec), g.Rule, g.NonRule)
	}
	b.WriteString("\n")

	for _, h := range report.Heatmaps {
		fmt.Fprintf(&b, "## %s, %s sentences\n\n", h.Category.Title(), sideName(h.Rule))
		b.WriteString("| |")
		for _, l := range h.Labels {
			fmt.Fprintf(&b, " %s |", escapeCell(l))
		}
		b.WriteString("\n|---|")
		for range h.Labels {
			b.WriteString("---:|")
		}
		b.WriteString("\n")
		for i, row := range h.Matrix {
			fmt.Fprintf(&b, "| %s |", escapeCell(h.Labels[i]))
			for j, v := range row {
				if j >= i {
					b.WriteString(" |")
					continue
				}
				fmt.Fprintf(&b, " %.2f |", v)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderDistributionMarkdown writes the Markdown form of a distribution report
func (r *Renderer) RenderDistributionMarkdown(report *model.DistributionReport, path string) error {
	return os.WriteFile(path, []byte(DistributionMarkdown(report)), 0644)
}

// RenderKeywordIndex writes an HTML page embedding the charts of a keyword report.
// Image paths are made relative to the page.
func (r *Renderer) RenderKeywordIndex(report *model.KeywordReport, path string) error {
	doc, body := newPage("Keyword analysis: " + report.Spec)
	appendText(body, atom.H1, "Keyword analysis: "+report.Spec)
	appendText(body, atom.P, fmt.Sprintf("%d %s sentences, %d distinct keywords, threshold %s",
		report.Sentences, report.Filter, report.Vocabulary, FormatThreshold(report.Threshold)))

	appendArtifacts(body, report.Charts, filepath.Dir(path))
	return writeHTML(doc, path)
}

// RenderDistributionIndex writes an HTML page embedding every distribution artifact
func (r *Renderer) RenderDistributionIndex(report *model.DistributionReport, outDir, path string) error {
	doc, body := newPage("Rule vs. non-rule keyword distributions")
	appendText(body, atom.H1, "Rule vs. non-rule keyword distributions")

	table := element(atom.Table)
	header := element(atom.Tr)
	for _, h := range []string{"Specification", "Rule", "Non-rule"} {
		appendText(header, atom.Th, h)
	}
	table.AppendChild(header)
	for _, g := range report.Groups {
		tr := element(atom.Tr)
		appendText(tr, atom.Td, g.Spec)
		appendText(tr, atom.Td, fmt.Sprint(g.Rule))
		appendText(tr, atom.Td, fmt.Sprint(g.NonRule))
		table.AppendChild(tr)
	}
	body.AppendChild(table)

	appendArtifacts(body, report.Artifacts, outDir)
	return writeHTML(doc, path)
}

func newPage(title string) (doc, body *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	appendText(head, atom.Title, title)
	root.AppendChild(head)

	body = element(atom.Body)
	root.AppendChild(body)
	doc.AppendChild(root)
	return doc, body
}

func appendArtifacts(body *html.Node, artifacts []model.Artifact, base string) {
	for _, a := range artifacts {
		src := a.Path
		if rel, err := filepath.Rel(base, a.Path); err == nil {
			src = filepath.ToSlash(rel)
		}
		section := element(atom.Section)
		appendText(section, atom.H2, a.Name+" ("+a.Kind+")")
		img := element(atom.Img)
		img.Attr = []html.Attribute{{Key: "src", Val: src}, {Key: "alt", Val: a.Name}}
		section.AppendChild(img)
		body.AppendChild(section)
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func appendText(parent *html.Node, a atom.Atom, text string) {
	n := element(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	parent.AppendChild(n)
}

func writeHTML(doc *html.Node, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close page: %w", closeErr)
		}
	}()
	return html.Render(f, doc)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func categoryList(cs []model.Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func sideName(rule bool) string {
	if rule {
		return "rule"
	}
	return "non-rule"
}
