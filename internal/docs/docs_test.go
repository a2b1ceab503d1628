package docs

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		desc  string
	}{
		{
			name:  "heading with description",
			text:  "# Title\n\nSome description",
			title: "Title",
			desc:  "Some description",
		},
		{
			name: "no heading",
			text: "Just a description\nspanning lines.",
			desc: "Just a description spanning lines.",
		},
		{
			name:  "multiple hashes and paragraphs",
			text:  "## Create a user\nFirst line\nsecond line.\n\n\n  Second paragraph.  \n",
			title: "Create a user",
			desc:  "First line second line.\n\nSecond paragraph.",
		},
		{
			name:  "heading only",
			text:  "# Only a title",
			title: "Only a title",
		},
		{
			name:  "leading blank lines are skipped",
			text:  "\n\n   \n# Title\nBody",
			title: "Title",
			desc:  "Body",
		},
		{
			name: "empty",
			text: "",
		},
		{
			name: "whitespace only is absent",
			text: "  \n\t\n  ",
		},
		{
			name: "empty heading",
			text: "#\nBody",
			desc: "Body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Extract(tt.text)
			assert.Equal(t, tt.title, c.Title)
			assert.Equal(t, tt.desc, c.Description)
		})
	}
}

func TestFromCommentGroup(t *testing.T) {
	src := `package p

// # Get a user
//
// Looks up a user
// by id.
//
//routedoc:get("/user/<id>")
//routedoc:openapi(tag = "Users")
func GetUser(id int) {}

func NoDoc() {}
`
	f, err := parser.ParseFile(token.NewFileSet(), "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	fn := f.Decls[0].(*ast.FuncDecl)
	c := FromCommentGroup(fn.Doc)
	assert.Equal(t, "Get a user", c.Title)
	assert.Equal(t, "Looks up a user by id.", c.Description)

	assert.Equal(t, Comment{}, FromCommentGroup(f.Decls[1].(*ast.FuncDecl).Doc))
}
