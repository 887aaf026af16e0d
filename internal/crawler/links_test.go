package crawler

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLinks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		base  string
		hrefs []string
		want  []string
	}{
		{
			name:  "root relative",
			base:  "https://a.com/bar/",
			hrefs: []string{"/foo"},
			want:  []string{"https://a.com/foo"},
		},
		{
			name:  "document relative",
			base:  "https://a.com/bar/",
			hrefs: []string{"baz", "../up"},
			want:  []string{"https://a.com/bar/baz", "https://a.com/up"},
		},
		{
			name:  "absolute passes through",
			base:  "https://a.com/",
			hrefs: []string{"http://b.org/x", "https://c.net"},
			want:  []string{"http://b.org/x", "https://c.net"},
		},
		{
			name:  "excluded hrefs",
			base:  "https://a.com/page",
			hrefs: []string{"/", "#", "https://a.com/page", "#section", "?q=1"},
			want:  nil,
		},
		{
			name:  "fragment and query truncated",
			base:  "https://a.com/",
			hrefs: []string{"/x?y=1#z", "/x#frag", "https://b.org/p?utm=1"},
			want:  []string{"https://a.com/x", "https://b.org/p"},
		},
		{
			name:  "escaped slash decoded",
			base:  "https://a.com/",
			hrefs: []string{"&#x2F;docs&#x2F;intro"},
			want:  []string{"https://a.com/docs/intro"},
		},
		{
			name:  "dedup keeps first appearance",
			base:  "https://a.com/",
			hrefs: []string{"/b", "/a", "/b", "https://a.com/a"},
			want:  []string{"https://a.com/b", "https://a.com/a"},
		},
		{
			name:  "non web schemes dropped",
			base:  "https://a.com/",
			hrefs: []string{"mailto:me@a.com", "javascript:void(0)", "/ok"},
			want:  []string{"https://a.com/ok"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveLinks(tc.base, tc.hrefs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveLinksInvariants(t *testing.T) {
	t.Parallel()

	base := "https://a.com/dir/page"
	hrefs := []string{"/", "#", base, "page", "./page", "/dir/page", "x", "x#1", "x?2", "https://b.com", "https://b.com"}
	got, err := ResolveLinks(base, hrefs)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, link := range got {
		assert.False(t, seen[link], "duplicate %q", link)
		seen[link] = true
		assert.NotEqual(t, base, link)
		assert.NotEqual(t, "/", link)
		assert.NotEqual(t, "#", link)
	}
	assert.Equal(t, []string{"https://a.com/dir/x", "https://b.com"}, got)
}

func TestResolveLinksRejectsUnparsable(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://a.com/")
	require.NoError(t, err)

	links, rejected := resolveLinks(base, []string{"%zz", "http://[::1", "/fine"})
	assert.Equal(t, []string{"https://a.com/fine"}, links)
	assert.Equal(t, []string{"%zz", "http://[::1"}, rejected)
}

func TestResolveLinksInvalidBase(t *testing.T) {
	t.Parallel()

	_, err := ResolveLinks("not a url", []string{"/x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidURL))
}
