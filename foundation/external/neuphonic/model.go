package neuphonic

import "encoding/json"

type Request struct {
	Text         string  `json:"text"`
	VoiceID      string  `json:"voice_id,omitempty"`
	LangCode     string  `json:"lang_code"`
	Speed        float64 `json:"speed"`
	SamplingRate int     `json:"sampling_rate"`
	Encoding     string  `json:"encoding"`
}

type EventData struct {
	Audio string `json:"audio"`
	Text  string `json:"text"`
}

type Event struct {
	StatusCode int             `json:"status_code"`
	Data       EventData       `json:"data"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}
