package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Monotonic(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, "issue-1", seq.NewID("issue"))
	assert.Equal(t, "sprint-2", seq.NewID("sprint"))
	assert.Equal(t, "issue-3", seq.NewID("issue"))
}

func TestSequence_Observe(t *testing.T) {
	seq := NewSequence()
	seq.Observe("issue-7")
	seq.Observe("sprint-3")
	seq.Observe("label-V1StGXR8_Z")
	seq.Observe("nodash")
	assert.Equal(t, "issue-8", seq.NewID("issue"))

	seq.Observe("issue-2")
	assert.Equal(t, "user-9", seq.NewID("user"), "lower suffixes never move the counter back")
}

func TestRandom_Charset(t *testing.T) {
	gen := NewRandom()
	pattern := regexp.MustCompile(`^issue-[a-zA-Z0-9]+$`)
	for i := 0; i < 100; i++ {
		id := gen.NewID("issue")
		require.Len(t, id, len("issue-")+Length)
		require.Regexp(t, pattern, id)
	}
}

func TestRandom_Uniqueness(t *testing.T) {
	const count = 10_000
	gen := NewRandom()
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id := gen.NewID("issue")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNew(t *testing.T) {
	gen, err := New("sequence")
	require.NoError(t, err)
	assert.IsType(t, &Sequence{}, gen)

	gen, err = New("")
	require.NoError(t, err)
	assert.IsType(t, &Random{}, gen)

	_, err = New("uuid4")
	assert.Error(t, err)
}
