package apiclient

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode разбирает тело ответа как есть. Пустое тело не ошибка.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 || v == nil {
		return nil
	}

	return json.Unmarshal(r.Body, v)
}

// DecodeData снимает обёртку {"data": ...}, если бэкенд её прислал,
// и разбирает полезную нагрузку в v.
func (r *Response) DecodeData(v any) error {
	if r == nil || len(r.Body) == 0 || v == nil {
		return nil
	}

	return json.Unmarshal(unwrapData(r.Body), v)
}

func unwrapData(body []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}

	data, ok := envelope["data"]
	if !ok || len(data) == 0 || string(data) == "null" {
		return body
	}

	// у объекта с собственным id поле data относится к модели, а не к обёртке
	if _, hasID := envelope["id"]; hasID {
		return body
	}

	return data
}
