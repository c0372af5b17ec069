package interpret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/genefit/internal/domain/species"
)

func newInterpreter(t testing.TB) *Interpreter {
	t.Helper()
	c, err := species.Default()
	require.NoError(t, err)
	in, err := New(c)
	require.NoError(t, err)
	return in
}

func TestClassifySubject(t *testing.T) {
	in := newInterpreter(t)

	cases := []struct {
		name string
		text string
		want string
	}{
		{"dog lower case", "This report belongs to a dog.", "Domestic Dog"},
		{"dog upper case", "Sample origin: DOG (canine)", "Domestic Dog"},
		{"dog inside a word", "Hotdogs are not a protein source.", "Domestic Dog"},
		{"catalog order wins", "Compared with a dog, the chimpanzee genome...", "Chimpanzee"},
		{"no keyword", "Your VO2max markers suggest endurance potential.", "Human"},
		{"empty text", "", "Human"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, in.ClassifySubject(tc.text).CommonName)
		})
	}

	assert.Equal(t, species.CategoryHuman, in.ClassifySubject("nothing here").Category)
	assert.True(t, in.ClassifySubject("a dolphin").IsAnimal())
}

func TestExtractSectionsHuman(t *testing.T) {
	in := newInterpreter(t)
	text := "Overview of your report.\n\n" +
		"Workout plan: three sessions of squats per week.\n\n" +
		"Nutrition guide: eat more protein and greens.\n\n" +
		"Health notes: watch cholesterol levels."

	got := in.ExtractSections(text, false)

	assert.Equal(t, "Workout plan: three sessions of squats per week.", got.Physical)
	assert.Equal(t, "Nutrition guide: eat more protein and greens.", got.Nutrition)
	assert.Equal(t, "Health notes: watch cholesterol levels.", got.Health)
	assert.Equal(t, "Overview of your report.", got.Unclassified)
	assert.False(t, got.Fallback)
}

func TestExtractSectionsAnimal(t *testing.T) {
	in := newInterpreter(t)
	text := "Physical traits: large frame.\nDiet: raw meat daily.\nHealth: hip dysplasia risk."

	got := in.ExtractSections(text, true)

	assert.Equal(t, "Physical traits: large frame.", got.Physical)
	assert.Equal(t, "Diet: raw meat daily.", got.Nutrition)
	assert.Equal(t, "Health: hip dysplasia risk.", got.Health)
	assert.Empty(t, got.Unclassified)
}

func TestExtractSectionsRunsToEnd(t *testing.T) {
	in := newInterpreter(t)

	got := in.ExtractSections("Training: sprint intervals and plenty of rest", false)

	assert.Equal(t, "Training: sprint intervals and plenty of rest", got.Physical)
	assert.Empty(t, got.Nutrition)
	assert.Empty(t, got.Health)
	assert.False(t, got.Fallback)
}

func TestExtractSectionsFallsBackToThirds(t *testing.T) {
	in := newInterpreter(t)
	paragraphs := []string{"one", "two", "three", "four", "five", "six", "seven"}
	text := strings.Join(paragraphs, "\n\n") + "\n\n\n\n"

	got := in.ExtractSections(text, false)

	require.True(t, got.Fallback)
	assert.Equal(t, "one\n\ntwo\n\nthree", got.Physical)
	assert.Equal(t, "four\n\nfive", got.Nutrition)
	assert.Equal(t, "six\n\nseven", got.Health)
	assert.Empty(t, got.Unclassified)
}

func TestExtractSectionsFallbackWithFewParagraphs(t *testing.T) {
	in := newInterpreter(t)

	got := in.ExtractSections("only one block", false)
	assert.True(t, got.Fallback)
	assert.Equal(t, "only one block", got.Physical)
	assert.Empty(t, got.Nutrition)
	assert.Empty(t, got.Health)

	got = in.ExtractSections("", false)
	assert.True(t, got.Fallback)
	assert.Empty(t, got.Physical)
}

func TestInterpretPicksRulesFromSubject(t *testing.T) {
	in := newInterpreter(t)
	text := "This horse shows strong physical endurance.\n\nDiet: hay and oats."

	subj, sections := in.Interpret(text)

	assert.Equal(t, "Horse", subj.CommonName)
	assert.Equal(t, "physical endurance.", sections.Physical)
	assert.Equal(t, "Diet: hay and oats.", sections.Nutrition)
	assert.Equal(t, "This horse shows strong", sections.Unclassified)
}

func TestNewRejectsBadPattern(t *testing.T) {
	c, err := species.Default()
	require.NoError(t, err)
	c.Species = append(c.Species, species.Entry{Keyword: "(unclosed"})

	_, err = New(c)
	assert.Error(t, err)
}

func FuzzExtractSections(f *testing.F) {
	f.Add("workout\n\nnutrition\n\nhealth", false)
	f.Add("a\n\nb\n\nc\n\nd", true)
	f.Add("Physical: tall. Diet: fish. Disease: none.", true)
	f.Add("", false)

	in := newInterpreter(f)
	f.Fuzz(func(t *testing.T, text string, isAnimal bool) {
		got := in.ExtractSections(text, isAnimal)

		for _, s := range []string{got.Physical, got.Nutrition, got.Health, got.Unclassified} {
			if !got.Fallback && !strings.Contains(text, s) {
				t.Fatalf("section %q is not part of the input", s)
			}
		}
		if !got.Fallback {
			return
		}
		want := 0
		for _, p := range strings.Split(text, "\n\n") {
			if strings.TrimSpace(p) != "" {
				want++
			}
		}
		count := func(s string) int {
			if s == "" {
				return 0
			}
			return len(strings.Split(s, "\n\n"))
		}
		if want > 0 && count(got.Physical) == 0 {
			t.Fatalf("physical section empty for %d paragraphs", want)
		}
		if count(got.Physical) < count(got.Nutrition) || count(got.Physical) < count(got.Health) {
			t.Fatalf("uneven split: %q", text)
		}
	})
}
