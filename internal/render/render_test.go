package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/luadoc/internal/model"
)

func sampleDoc() *model.Documentation {
	return &model.Documentation{
		Classes: []*model.Class{
			{
				Name:        "Player",
				Description: "A connected player.",
				Parents:     []string{"Entity", "table<string, any>"},
				Fields: []model.Field{
					{Name: "name", Type: "string", Visibility: model.Public, Description: "display name"},
					{Name: "hp", Type: "integer", Visibility: model.Private},
				},
				Functions: []model.Function{
					{
						Name:              "spawn",
						Namespace:         "Player",
						Description:       "Puts the player in the world.",
						Parameters:        []model.Parameter{{Name: "x", Type: "number", Description: "column"}},
						ReturnType:        "boolean",
						ReturnDescription: "true on success",
						NoDiscard:         true,
						Examples:          []string{"local ok = p:spawn(1)"},
						See:               []model.SeeReference{{Name: "Entity", Kind: model.RefClass}, {Name: "log", Kind: model.RefGlobalFunction, Description: "logging"}},
					},
					{Name: "new", Namespace: "Player", Static: true, ReturnType: "Player"},
				},
			},
			{Name: "Entity"},
			{Name: "Player.Stats", Fields: []model.Field{{Name: "mode", Type: "'a'|'b'", Visibility: model.Public}}},
		},
		Functions: []model.Function{{Name: "log", Parameters: []model.Parameter{{Name: "msg", Type: "string"}}}},
		Variables: []model.Variable{{Name: "VERSION", Type: "string", Description: "release"}},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"Markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{" json ", FormatJSON},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("html")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestText(t *testing.T) {
	t.Parallel()

	got, err := String(sampleDoc(), FormatText, Options{})
	require.NoError(t, err)

	want := strings.Join([]string{
		"=== DOCUMENTATION ===",
		"",
		"--- CLASSES ---",
		"Player : Entity, table<string, any>",
		"  public  name: string - display name",
		"  private hp:   integer",
		"  spawn(x: number) -> boolean - Puts the player in the world.",
		"  static new() -> Player",
		"",
		"Entity",
		"",
		"Player.Stats",
		"  public mode: 'a'|'b'",
		"",
		"",
		"--- FUNCTIONS ---",
		"log(msg: string)",
		"",
		"--- VARIABLES ---",
		"global VERSION: string - release",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestTextEmpty(t *testing.T) {
	t.Parallel()

	got, err := String(model.New(), FormatText, Options{})
	require.NoError(t, err)
	assert.Equal(t, "=== DOCUMENTATION ===\n", got)
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	got, err := String(sampleDoc(), FormatMarkdown, Options{Title: "Game API"})
	require.NoError(t, err)

	for _, want := range []string{
		"# Game API\n",
		"- [Entity](#class-entity)\n- [Player](#class-player)\n  - [Player.Stats](#class-player-stats)\n- [Globals](#globals)\n",
		"<a id=\"class-player\"></a>\n\n### Player\n\nA connected player.\n",
		"**Inherits:** [Entity](#class-entity), `table<string, any>`\n",
		"| `name` | `string` | public | display name |\n",
		"| `mode` | `'a'\\|'b'` | public |  |\n",
		"<a id=\"fn-player-spawn\"></a>\n\n##### `Player:spawn(x: number) -> boolean`\n",
		"##### `Player.new() -> Player`\n",
		"- `x` (`number`): column\n",
		"**Returns** `boolean`: true on success\n",
		"> The return value must not be discarded.\n",
		"```lua\nlocal ok = p:spawn(1)\n```\n",
		"- [Entity](#class-entity)\n- [log](#fn-log) - logging\n",
		"#### `log(msg: string)`\n",
		"| `VERSION` | `string` | release |\n",
	} {
		assert.Contains(t, got, want)
	}
}

func TestMarkdownDefaultTitle(t *testing.T) {
	t.Parallel()

	got, err := String(model.New(), FormatMarkdown, Options{})
	require.NoError(t, err)
	assert.Equal(t, "# API Reference\n", got)
}

func TestTOON(t *testing.T) {
	t.Parallel()

	got, err := String(sampleDoc(), FormatTOON, Options{})
	require.NoError(t, err)
	assert.Contains(t, got, "classes[3]{name,parents,description}:")
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestJSON(t *testing.T) {
	t.Parallel()

	got, err := String(sampleDoc(), FormatJSON, Options{})
	require.NoError(t, err)

	var back model.Documentation
	require.NoError(t, json.Unmarshal([]byte(got), &back))
	require.Len(t, back.Classes, 3)
	assert.Equal(t, "Player", back.Classes[0].Name)
	assert.Contains(t, got, `"return_type": "boolean"`)
	assert.NotContains(t, got, `"local"`)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	got, err := String(sampleDoc(), FormatYAML, Options{})
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(got), &back))
	assert.Len(t, back["classes"], 3)
	assert.Contains(t, got, "  - name: Player\n")
}
