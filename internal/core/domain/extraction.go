package domain

type ExtractionOutcome string

const (
	ExtractionOK          ExtractionOutcome = "ok"
	ExtractionEmpty       ExtractionOutcome = "empty"
	ExtractionFailed      ExtractionOutcome = "failed"
	ExtractionUnsupported ExtractionOutcome = "unsupported"
)

// Extraction is the result of reading text out of a file. Failures are an
// outcome, not an error: Text is empty for every outcome except ExtractionOK.
type Extraction struct {
	Text    string
	Outcome ExtractionOutcome
	Pages   int
}

func ExtractedText(text string, pages int) Extraction {
	if text == "" {
		return Extraction{Outcome: ExtractionEmpty, Pages: pages}
	}
	return Extraction{Text: text, Outcome: ExtractionOK, Pages: pages}
}

func ExtractionFailure() Extraction {
	return Extraction{Outcome: ExtractionFailed}
}

// LabelScore is one entry of a zero-shot ranking.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
