package presenter

import (
	"fmt"
	"math"
	"strconv"

	"newsbrief/internal/pipeline"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const emptyInputMessage = "Please enter a URL first."

// View is everything a front end needs to display one outcome. On success
// Title, Summary and Metrics are set; otherwise only Message is.
type View struct {
	Level   Level
	Title   string
	Summary string
	Metrics []string
	Message string
	Kind    pipeline.Kind
}

func Render(out pipeline.Outcome) View {
	if out.Err != nil {
		if out.Err.Kind == pipeline.KindEmptyInput {
			return View{
				Level:   LevelWarning,
				Message: emptyInputMessage,
				Kind:    out.Err.Kind,
			}
		}

		return View{
			Level:   LevelError,
			Message: fmt.Sprintf("Error: %s. Check if the URL is valid.", out.Err.Error()),
			Kind:    out.Err.Kind,
		}
	}

	return View{
		Level:   LevelSuccess,
		Title:   out.Article.Title,
		Summary: out.Result.SummaryText,
		Metrics: []string{
			fmt.Sprintf("Original Length: %d words", out.Result.OriginalWordCount),
			fmt.Sprintf("Summary Length: %d words", out.Result.SummaryWordCount),
			fmt.Sprintf("Processing Time: %s seconds", FormatSeconds(out.Result.ElapsedSeconds)),
		},
	}
}

// FormatSeconds rounds to two decimals, half away from zero.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(math.Round(seconds*100)/100, 'f', 2, 64)
}
