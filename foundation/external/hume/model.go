package hume

type Models struct {
	Prosody struct{} `json:"prosody"`
}

type Request struct {
	Data   string `json:"data"`
	Models Models `json:"models"`
}

type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type TimeInterval struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

type Prediction struct {
	Time     TimeInterval   `json:"time"`
	Emotions []EmotionScore `json:"emotions"`
}

type Prosody struct {
	Predictions []Prediction `json:"predictions"`
	Warning     string       `json:"warning"`
	Code        string       `json:"code"`
}

type Response struct {
	Prosody *Prosody `json:"prosody"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
}
