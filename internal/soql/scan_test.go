package soql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		want     []string
	}{
		{name: "plain", template: "select Id from A where Id in [ids]", want: []string{"ids"}},
		{name: "inside string literal", template: "select '[x]' from A", want: nil},
		{name: "escaped quote keeps the literal open", template: `select 'a\'[x]' from A`, want: nil},
		{name: "doubled quote", template: "select 'it''s [x]' from A where B = [y]", want: []string{"y"}},
		{name: "line comment", template: "select Id from A -- [x]\nwhere B = [y]", want: []string{"y"}},
		{name: "block comment", template: "select Id /* [x]\n[z] */ from A where B = [y]", want: []string{"y"}},
		{name: "duplicates kept", template: "[a] [b] [a]", want: []string{"a", "b", "a"}},
		{name: "not an identifier", template: "select Id from A where B = [a-b]", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			vars, err := Placeholders(tc.template)
			require.NoError(t, err)

			var names []string
			for _, v := range vars {
				names = append(names, v.Name)
				assert.Equal(t, "["+v.Name+"]", tc.template[v.Start:v.End], "span must cover the placeholder")
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestPlaceholders_SpansInDocumentOrder(t *testing.T) {
	template := "select Id from A where B in [ids] and C = [ids]"
	vars, err := Placeholders(template)
	require.NoError(t, err)
	require.Len(t, vars, 2)

	first := strings.Index(template, "[ids]")
	second := strings.LastIndex(template, "[ids]")
	assert.Equal(t, CapturedVariable{Name: "ids", Start: first, End: first + 5}, vars[0])
	assert.Equal(t, CapturedVariable{Name: "ids", Start: second, End: second + 5}, vars[1])
}

func TestNames_Deduplicates(t *testing.T) {
	vars := []CapturedVariable{{Name: "b"}, {Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "a"}}
	assert.Equal(t, []string{"b", "a", "c"}, Names(vars))
	assert.Empty(t, Names(nil))
}

func TestLex_Unterminated(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		offset int
		msg    string
	}{
		{name: "string", text: "select 'abc", offset: 7, msg: "unterminated string literal"},
		{name: "escaped closing quote", text: `select 'abc\'`, offset: 7, msg: "unterminated string literal"},
		{name: "block comment", text: "select Id /* from A", offset: 10, msg: "unterminated block comment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Placeholders(tc.text)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.offset, parseErr.Offset)
			assert.Equal(t, tc.msg, parseErr.Msg)
		})
	}
}

func TestLex_CoversInput(t *testing.T) {
	text := "select Foo.*, 'x -- y' /* c */ from Foo -- tail\nwhere Id = [id]"
	tokens, err := Lex(text)
	require.NoError(t, err)

	var rebuilt strings.Builder
	pos := 0
	for _, tok := range tokens {
		require.Equal(t, pos, tok.Start, "tokens must be contiguous")
		rebuilt.WriteString(tok.Text)
		pos = tok.End
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestWildcards(t *testing.T) {
	text := "select Foo.*, Bar . *, 'Baz.*', Id from Foo -- Qux.*\n/* Quux.* */"
	refs, err := Wildcards(text)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "Foo", refs[0].Object)
	assert.Equal(t, "Foo.*", text[refs[0].Start:refs[0].End])
	assert.Equal(t, "Bar", refs[1].Object)
	assert.Equal(t, "Bar . *", text[refs[1].Start:refs[1].End])
}

func TestClean(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "collapses whitespace and strips comments",
			text: "  select  Id\n\tfrom  A -- trailing\n where x = 'a   b' /* block\n comment */ limit 1  ",
			want: "select Id from A where x = 'a   b' limit 1",
		},
		{
			name: "comment between tokens keeps them apart",
			text: "select Id/*x*/from A",
			want: "select Id from A",
		},
		{
			name: "comment markers inside strings are content",
			text: "select Id from A where x = '-- not a comment /* nor this */'",
			want: "select Id from A where x = '-- not a comment /* nor this */'",
		},
		{
			name: "empty",
			text: " \n -- only a comment",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Clean(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
