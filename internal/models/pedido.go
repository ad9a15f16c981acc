package models

import "time"

// Triage statuses for a pedido. A pedido is created as pending, moved to
// triaged by the consumer after classification and persistence both succeed,
// or to failed after the retry budget is exhausted.
const (
	TriagePending = "pending"
	TriageTriaged = "triaged"
	TriageFailed  = "failed"
)

// PedidoAjuda represents a help request stored in the 'pedidos_ajuda' table.
// NivelUrgencia and UrgenciaScores stay NULL until the triage consumer
// classifies the request.
type PedidoAjuda struct {
	ID                  int64     `db:"id" json:"id"`
	UsuarioID           int64     `db:"usuario_id" json:"usuario_id"`
	TipoAjudaID         int64     `db:"tipo_ajuda_id" json:"tipo_ajuda_id"`
	Descricao           string    `db:"descricao" json:"descricao"`
	CriancasNoLocal     int       `db:"criancas_no_local" json:"criancas_no_local"` // 0 = no, 1 = yes
	PessoasNoLocal      int       `db:"pessoas_no_local" json:"pessoas_no_local"`
	DiasSemAjuda        int       `db:"dias_sem_ajuda" json:"dias_sem_ajuda"`
	VoluntariosProximos int       `db:"voluntarios_proximos" json:"voluntarios_proximos"`
	NivelUrgencia       *string   `db:"nivel_urgencia" json:"nivel_urgencia,omitempty"`
	UrgenciaScores      *string   `db:"urgencia_scores" json:"urgencia_scores,omitempty"` // JSON: [{"label":...,"score":...}]
	TriageStatus        string    `db:"triage_status" json:"triage_status"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
