package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBijection checks that every alphabet symbol appears exactly once
// as a key and exactly once as a value.
func assertBijection(t *testing.T, k *Key) {
	t.Helper()
	alphabet := []rune(k.Alphabet())
	require.Len(t, k.mapping, len(alphabet))

	values := make(map[rune]int, len(alphabet))
	for _, c := range alphabet {
		v, ok := k.mapping[c]
		require.True(t, ok, "symbol %q missing from mapping", c)
		values[v]++
	}
	for _, c := range alphabet {
		assert.Equal(t, 1, values[c], "symbol %q should be the image of exactly one symbol", c)
	}
}

// =============================================================================
// New — seeded uniform permutation
// =============================================================================

func TestKey_SeededFixture(t *testing.T) {
	k, err := New("abc", NewRand(42))
	require.NoError(t, err)

	assert.Equal(t, "acb", k.Image())
	assert.Equal(t, "aaccbb", k.Decipher("aabbcc"))
}

func TestKey_SeededFixture_IdentityDraw(t *testing.T) {
	// Seed 1 happens to draw the identity permutation; fixed points are legal.
	k, err := New("abc", NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, "abc", k.Image())
	assert.Equal(t, "aabbcc", k.Decipher("aabbcc"))
}

func TestKey_Reproducible(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz "
	k1, err := New(alphabet, NewRand(7))
	require.NoError(t, err)
	k2, err := New(alphabet, NewRand(7))
	require.NoError(t, err)

	assert.Equal(t, k1.Image(), k2.Image())
	for i := 0; i < 100; i++ {
		k1.Perturb()
		k2.Perturb()
	}
	assert.Equal(t, k1.Image(), k2.Image())
}

func TestKey_EmptyAlphabet(t *testing.T) {
	k, err := New("", NewRand(0))
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
	assert.Nil(t, k)

	k, err = Parse("", "", nil)
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
	assert.Nil(t, k)
}

func TestKey_DuplicateSymbol(t *testing.T) {
	_, err := New("abca", NewRand(0))
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestKey_NilRand(t *testing.T) {
	_, err := New("abc", nil)
	assert.Error(t, err)
}

func TestKey_BijectionAfterConstruction(t *testing.T) {
	alphabets := []string{"a", "ab", "abc", "abcdefghijklmnopqrstuvwxyz", "äöü ß", "0123456789"}
	for _, alphabet := range alphabets {
		for seed := uint64(0); seed < 20; seed++ {
			k, err := New(alphabet, NewRand(seed))
			require.NoError(t, err)
			assertBijection(t, k)
		}
	}
}

// =============================================================================
// Choose / Perturb — draws and transpositions
// =============================================================================

func TestKey_ChooseSequence(t *testing.T) {
	k, err := New("abc", NewRand(42))
	require.NoError(t, err)

	var drawn []rune
	for i := 0; i < 6; i++ {
		drawn = append(drawn, k.Choose())
	}
	assert.Equal(t, []rune("bbcaac"), drawn)
}

func TestKey_ChooseStaysInAlphabet(t *testing.T) {
	k, err := New("xyz", NewRand(3))
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		assert.Contains(t, "xyz", string(k.Choose()))
	}
}

func TestKey_PerturbSequence(t *testing.T) {
	k, err := New("abc", NewRand(42))
	require.NoError(t, err)

	// Draws (b,b): no-op, but both draws are consumed.
	assert.Equal(t, "acb", k.Perturb().Image())
	// Draws (c,a): swap images of c and a.
	assert.Equal(t, "bca", k.Perturb().Image())
	// Draws (a,c): swap back.
	assert.Equal(t, "acb", k.Perturb().Image())
}

func TestKey_PerturbKeepsBijection(t *testing.T) {
	k, err := New("abcdefghijklmnopqrstuvwxyz ", NewRand(11))
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		before := k.Clone()
		k.Perturb()
		assertBijection(t, k)

		changed := 0
		for _, c := range k.Alphabet() {
			if before.mapping[c] != k.mapping[c] {
				changed++
			}
		}
		assert.True(t, changed == 0 || changed == 2, "perturb changed %d entries", changed)
	}
}

func TestKey_PerturbDecipherDiffersOnlyAtSwappedSymbols(t *testing.T) {
	k, err := New("abcdef", NewRand(5))
	require.NoError(t, err)
	const text = "fade a bad cafe, feed a dead bee!"

	for i := 0; i < 50; i++ {
		before := k.Clone()
		k.Perturb()

		swapped := make(map[rune]bool)
		for _, c := range k.Alphabet() {
			if before.mapping[c] != k.mapping[c] {
				swapped[c] = true
			}
		}

		p0 := []rune(before.Decipher(text))
		p1 := []rune(k.Decipher(text))
		require.Len(t, p1, len(p0))
		for j, c := range []rune(text) {
			if !swapped[c] {
				assert.Equal(t, p0[j], p1[j], "position %d (%q) should not change", j, c)
			}
		}
	}
}

func TestKey_PerturbedLeavesOriginal(t *testing.T) {
	k, err := New("abcdefgh", NewRand(9))
	require.NoError(t, err)
	image := k.Image()

	for i := 0; i < 20; i++ {
		p := k.Perturbed()
		assertBijection(t, p)
	}
	assert.Equal(t, image, k.Image())
}

func TestKey_CloneSharesRandomSource(t *testing.T) {
	a, err := New("abc", NewRand(42))
	require.NoError(t, err)
	b, err := New("abc", NewRand(42))
	require.NoError(t, err)

	// Drawing through a clone advances the shared stream: the next draw on
	// the original matches the third draw of an untouched twin.
	c := a.Clone()
	c.Choose()
	c.Choose()
	b.Choose()
	b.Choose()
	assert.Equal(t, b.Choose(), a.Choose())
}

// =============================================================================
// Decipher / Encipher / Parse
// =============================================================================

func TestKey_DecipherPassesUnknownSymbols(t *testing.T) {
	k, err := Parse("abc", "bca", nil)
	require.NoError(t, err)

	assert.Equal(t, "bca", k.Decipher("abc"))
	for _, c := range []string{"x", " ", "Z", "!", "é", "\n"} {
		assert.Equal(t, c, k.Decipher(c))
	}
	assert.Equal(t, "b-c-a!", k.Decipher("a-b-c!"))
	assert.Equal(t, "", k.Decipher(""))
}

func TestKey_EncipherInvertsDecipher(t *testing.T) {
	k, err := New("abcdefghijklmnopqrstuvwxyz", NewRand(123))
	require.NoError(t, err)

	const plaintext = "the quick brown fox jumps over the lazy dog"
	ciphertext := k.Encipher(plaintext)
	assert.Equal(t, plaintext, k.Decipher(ciphertext))
	assert.Equal(t, plaintext, k.Inverse().Decipher(k.Decipher(plaintext)))
}

func TestKey_Parse(t *testing.T) {
	k, err := Parse("abc", "cab", nil)
	require.NoError(t, err)
	assert.Equal(t, "cab", k.Image())
	assert.Equal(t, "abc→cab", k.String())

	v, ok := k.Map('a')
	assert.True(t, ok)
	assert.Equal(t, 'c', v)
	_, ok = k.Map('z')
	assert.False(t, ok)
}

func TestKey_ParseRejectsNonBijection(t *testing.T) {
	cases := map[string]string{
		"short":      "ab",
		"long":       "abcd",
		"repeat":     "aab",
		"off-domain": "abz",
	}
	for name, image := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("abc", image, nil)
			assert.ErrorIs(t, err, ErrNotBijection)
		})
	}
}
