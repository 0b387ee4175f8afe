package app

import "errors"

var (
	ErrNaoPronto               = errors.New("dados ainda não carregados")
	ErrNuvemNaoConfigurada     = errors.New("sincronização com a nuvem não configurada")
	ErrEncerrado               = errors.New("controlador encerrado")
	ErrAutorObrigatorio        = errors.New("usuário autenticado obrigatório")
	ErrTituloObrigatorio       = errors.New("título obrigatório")
	ErrTextoObrigatorio        = errors.New("comentário vazio")
	ErrProjetoNaoEncontrado    = errors.New("projeto não encontrado")
	ErrDemandaNaoEncontrada    = errors.New("demanda não encontrada")
	ErrComentarioNaoEncontrado = errors.New("comentário não encontrado")
	ErrCidadeNaoEncontrada     = errors.New("cidade não encontrada")
	ErrCidadeDuplicada         = errors.New("já existe uma cidade com esse nome")
	ErrPrioridadeInvalida      = errors.New("prioridade inválida")
	ErrNumeroInvalido          = errors.New("número deve ser inteiro não negativo")
	ErrConfirmacaoNecessaria   = errors.New("confirmação necessária para excluir")
	ErrSomenteAutor            = errors.New("apenas o autor pode excluir o comentário")
)
