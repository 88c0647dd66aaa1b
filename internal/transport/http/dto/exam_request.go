package dto

type SubmitRequest struct {
	SimuladoNumero            int            `json:"simuladoNumero" validate:"required,gt=0"`
	Respostas                 map[string]any `json:"respostas"`
	Acertos                   int            `json:"acertos" validate:"gte=0"`
	Total                     int            `json:"total" validate:"required,gt=0"`
	TempoGastoSegundos        int            `json:"tempoGastoSegundos" validate:"gte=0"`
	FinalizadoAutomaticamente bool           `json:"finalizadoAutomaticamente"`
}

func (r *SubmitRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Respostas == nil {
		r.Respostas = map[string]any{}
	}
	return nil
}
