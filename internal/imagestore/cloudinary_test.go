package imagestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url, want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345/perfiles/u42.jpg", "perfiles/u42"},
		{"https://res.cloudinary.com/demo/image/upload/perfiles/u42.png", "perfiles/u42"},
		{"https://res.cloudinary.com/demo/image/upload/v99/solo.webp", "solo"},
		{"https://example.com/no/upload/here.jpg", "here"},
		{"https://res.cloudinary.com/demo/image/fetch/x.jpg", ""},
		{"not a url at all %%%", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PublicIDFromURL(c.url), c.url)
	}
}

func TestSignDeterministic(t *testing.T) {
	c := New("demo", "key", "secret")
	s1 := c.sign(map[string]string{"timestamp": "100", "folder": "perfiles"})
	s2 := c.sign(map[string]string{"folder": "perfiles", "timestamp": "100"})
	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 40)
}
