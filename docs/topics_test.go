package docs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/abe"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed in readme.md.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			listed = append(listed, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"# Ledger", "# Attribution", "# Run", "# Configuration"} {
		if !strings.Contains(all, title) {
			t.Errorf("GetTopics(*) is missing %q", title)
		}
	}
	if strings.Contains(all, "# moneyin") {
		t.Errorf("GetTopics(*) must not include the readme")
	}
	if _, err := GetTopics("readme", "nonexistent"); err == nil {
		t.Errorf("GetTopics(nonexistent) should fail")
	}
}

// Block is a fenced code block of a markdown file.
type Block struct {
	Info    string
	Content string
	File    string
	Line    int
}

// TestCodeBlocks checks that the record examples of the documentation are
// decoded by the ledger codecs.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	checked := 0
	for _, file := range files {
		for _, b := range parseMarkdown(t, file) {
			r := strings.NewReader(b.Content)
			var err error
			switch b.Info {
			case "csv payment":
				_, err = abe.DecodePayment("example", r)
			case "csv attributions":
				var attrs abe.Attributions
				if attrs, err = abe.DecodeAttributions(r); err == nil {
					err = attrs.Validate()
				}
			case "csv transactions":
				_, err = abe.DecodeTransactions(r)
			default:
				continue
			}
			checked++
			if err != nil {
				t.Errorf("%s:%d: invalid %s example: %v", b.File, b.Line, b.Info, err)
			}
		}
	}
	if checked != 3 {
		t.Errorf("checked %d examples, want 3", checked)
	}
}

// parseMarkdown returns the fenced code blocks of a markdown file.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Info:    string(fcb.Info.Segment.Value(content)),
			Content: b.String(),
			File:    file,
			Line:    bytes.Count(content[:fcb.Info.Segment.Start], []byte("\n")) + 1,
		})
		return ast.WalkContinue, nil
	})
	return blocks
}
