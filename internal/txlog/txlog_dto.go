package txlog

import "time"

type EntryResponse struct {
	ID          string  `json:"id"`
	RequestID   string  `json:"request_id"`
	RequestKind string  `json:"request_kind"`
	Type        string  `json:"type"`
	ActorID     string  `json:"actor_id"`
	Comment     *string `json:"comment,omitempty"`
	Result      string  `json:"result"`
	CreatedAt   string  `json:"created_at"`
}

func MapToResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID.String(),
		RequestID:   e.RequestID.String(),
		RequestKind: string(e.RequestKind),
		Type:        string(e.Type),
		ActorID:     e.ActorID.String(),
		Comment:     e.Comment,
		Result:      e.Result,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func MapToListResponse(entries []Entry) []EntryResponse {
	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = MapToResponse(e)
	}
	return resp
}
