package style

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thinkscotty/reelhouse/internal/models"
)

func numberedFilms(n int) []models.Film {
	films := make([]models.Film, n)
	for i := range films {
		films[i] = models.Film{
			Slug:        fmt.Sprintf("film-%02d", i),
			Title:       fmt.Sprintf("Film %02d", i),
			ReleaseYear: 1920 + i,
		}
	}
	return films
}

func TestBuildListPrompt(t *testing.T) {
	films := numberedFilms(20)

	t.Run("caps embedded films", func(t *testing.T) {
		prompt := BuildListPrompt("noir", films, nil)
		require.Contains(t, prompt, `"slug": "film-11"`)
		require.NotContains(t, prompt, `"slug": "film-12"`)
		require.Contains(t, prompt, "The archive holds 20 films. Here are 12 of them")
		require.Contains(t, prompt, "Creative direction: noir")
	})

	t.Run("highlight outside the cap is embedded", func(t *testing.T) {
		prompt := BuildListPrompt("noir", films, &films[19])
		require.Equal(t, 1, strings.Count(prompt, `"slug": "film-19"`))
		require.Contains(t, prompt, "Currently highlighted film")
	})

	t.Run("highlight inside the cap is embedded again", func(t *testing.T) {
		prompt := BuildListPrompt("noir", films, &films[0])
		require.Equal(t, 2, strings.Count(prompt, `"slug": "film-00"`))
	})

	t.Run("hook contract and response shape", func(t *testing.T) {
		prompt := BuildListPrompt("noir", nil, nil)
		for _, hook := range ListHooks {
			require.Contains(t, prompt, hook)
		}
		require.Contains(t, prompt, responseContract)
		require.NotContains(t, prompt, "Currently highlighted film")
	})
}

func TestBuildDetailPrompt(t *testing.T) {
	film := models.Film{Slug: "vertigo-1958", Title: "Vertigo", ReleaseYear: 1958, Cast: []string{}}
	prompt := BuildDetailPrompt("Noir dossier for Vertigo (1958)", film)

	require.Contains(t, prompt, "Creative direction: Noir dossier for Vertigo (1958)")
	require.Contains(t, prompt, `"title": "Vertigo"`)
	require.Contains(t, prompt, "EMPTY FIELDS")
	require.Contains(t, prompt, "whyImportant")
	require.Contains(t, prompt, responseContract)
	require.NotContains(t, prompt, AttrRandomPanel)
}

func TestBuildPrompt(t *testing.T) {
	film := models.Film{Slug: "vertigo-1958", Title: "Vertigo"}

	t.Run("dispatches by scope", func(t *testing.T) {
		list, err := BuildPrompt(ListRequest("mood", []models.Film{film}, nil))
		require.NoError(t, err)
		require.Equal(t, BuildListPrompt("mood", []models.Film{film}, nil), list)

		detail, err := BuildPrompt(DetailRequest("mood", &film))
		require.NoError(t, err)
		require.Equal(t, BuildDetailPrompt("mood", film), detail)
	})

	t.Run("provider agnostic", func(t *testing.T) {
		prompt, err := BuildPrompt(ListRequest("mood", nil, nil))
		require.NoError(t, err)
		for _, name := range []string{"Gemini", "OpenAI", "GPT"} {
			require.NotContains(t, prompt, name)
		}
	})

	t.Run("detail without film", func(t *testing.T) {
		_, err := BuildPrompt(DetailRequest("mood", nil))
		require.Error(t, err)
	})

	t.Run("unknown scope", func(t *testing.T) {
		_, err := BuildPrompt(Request{Scope: "poster"})
		require.Error(t, err)
	})
}
