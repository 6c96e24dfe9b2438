package queue

const (
	TypeDocumentProcess = "training:process"
	TypeFinetunePoll    = "finetune:poll"
)

type DocumentProcessPayload struct {
	DocumentID string `json:"document_id"`
}

type FinetunePollPayload struct {
	JobID string `json:"job_id"`
}
