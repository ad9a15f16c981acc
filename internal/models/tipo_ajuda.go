package models

// TipoAjuda represents a help-type catalog entry in the 'tipos_ajuda' table.
type TipoAjuda struct {
	ID        int64  `db:"id" json:"id"`
	Nome      string `db:"nome" json:"nome"`
	Descricao string `db:"descricao" json:"descricao"`
}
