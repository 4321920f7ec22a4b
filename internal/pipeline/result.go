package processor

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Result statuses.
const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Page is one wire entry of json_data / ocr_output: a single-key object
// mapping the stringified page index to that page's text.
type Page struct {
	Index int
	Text  string
}

func (p Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{strconv.Itoa(p.Index): p.Text})
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("page entry must have exactly one key, got %d", len(m))
	}
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("page entry key %q is not an index: %w", k, err)
		}
		p.Index = idx
		p.Text = v
	}
	return nil
}

// Result is the externally visible outcome of one pipeline run. Exactly one
// of the success payload and Message is populated, selected by Status.
type Result struct {
	Status        string `json:"status"`
	JSONData      []Page `json:"json_data,omitempty"`
	OCROutput     []Page `json:"ocr_output,omitempty"`
	ProcessedDate string `json:"processed_date,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Failed builds a failure Result carrying only the message.
func Failed(message string) Result {
	return Result{Status: StatusFailed, Message: message}
}
