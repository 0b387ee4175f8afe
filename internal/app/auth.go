package app

import (
	"context"
	"strings"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/localstore"
	"github.com/apadrinhaparana/demandas/internal/util"
)

const (
	MensagemCredenciaisInvalidas = "E-mail ou senha inválidos."
	MensagemEmailDuplicado       = "Já existe um usuário com este e-mail."
	MensagemCadastroOffline      = "Sem conexão. Conecte-se à internet para criar a conta."
	MensagemCadastroFalhou       = "Não foi possível salvar o cadastro na nuvem. Tente novamente."
	MensagemIndisponivel         = "Os dados ainda não foram carregados."
)

// AuthResult é o desfecho de login e cadastro. Falhas de validação são dados,
// não erros.
type AuthResult struct {
	Sucesso  bool             `json:"sucesso"`
	Usuario  *demanda.Usuario `json:"usuario,omitempty"`
	Mensagem string           `json:"mensagem,omitempty"`
}

func falha(msg string) AuthResult {
	return AuthResult{Mensagem: msg}
}

type NovoUsuario struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Cargo string `json:"cargo"`
}

// Autenticar compara o e-mail sem diferenciar caixa e a senha exatamente.
func (c *Controller) Autenticar(email, senha string) AuthResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requirePronto() != nil {
		return falha(MensagemIndisponivel)
	}
	for _, u := range c.usuarios {
		if util.SameText(u.Email, email) && u.Senha == senha {
			usuario := u
			return AuthResult{Sucesso: true, Usuario: &usuario}
		}
	}
	return falha(MensagemCredenciaisInvalidas)
}

// Registrar valida o cadastro e só admite o usuário depois que a lista de
// usuários foi gravada na nuvem. Sem nuvem configurada o cadastro é local.
// Enquanto a gravação está em curso o e-mail fica reservado e o usuário não
// entra na coleção: não autentica nem vai junto em outros envios.
func (c *Controller) Registrar(ctx context.Context, in NovoUsuario) AuthResult {
	nome := strings.TrimSpace(in.Nome)
	email := util.TextKey(in.Email)
	if nome == "" {
		return falha(util.ErrNomeObrigatorio.Error())
	}
	if err := util.ValidateEmail(email); err != nil {
		return falha(err.Error())
	}
	if err := util.ValidatePIN(in.Senha); err != nil {
		return falha(err.Error())
	}

	c.mu.Lock()
	if c.requirePronto() != nil {
		c.mu.Unlock()
		return falha(MensagemIndisponivel)
	}
	if c.emailEmUsoLocked(email) {
		c.mu.Unlock()
		return falha(MensagemEmailDuplicado)
	}
	novo := demanda.Usuario{
		ID:       util.NewID(),
		Nome:     nome,
		Email:    email,
		Senha:    in.Senha,
		Cargo:    strings.TrimSpace(in.Cargo),
		Iniciais: util.Iniciais(nome),
		CriadoEm: demanda.Timestamp(c.now()),
	}
	if !c.cloudEnabled() {
		defer c.mu.Unlock()
		return c.admitirLocked(ctx, novo)
	}
	c.emailsReservados[email] = struct{}{}
	candidatos := append(append([]demanda.Usuario{}, c.usuarios...), novo)
	c.mu.Unlock()

	res := c.cloud.SaveUsuarios(ctx, candidatos)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.emailsReservados, email)
	if !res.Sucesso {
		c.logger.Warn().Err(res.Err).Bool("offline", res.Offline).Msg("cadastro recusado: nuvem não confirmou")
		if res.Offline {
			return falha(MensagemCadastroOffline)
		}
		return falha(MensagemCadastroFalhou)
	}
	if err := c.requirePronto(); err != nil {
		return falha(MensagemIndisponivel)
	}
	if c.emailEmUsoLocked(email) {
		return falha(MensagemEmailDuplicado)
	}
	return c.admitirLocked(ctx, novo)
}

// emailEmUsoLocked considera a coleção e os cadastros aguardando a nuvem.
func (c *Controller) emailEmUsoLocked(email string) bool {
	if _, ok := c.emailsReservados[email]; ok {
		return true
	}
	for _, u := range c.usuarios {
		if util.SameText(u.Email, email) {
			return true
		}
	}
	return false
}

// admitirLocked inclui o usuário na coleção. O envio agendado cobre um
// snapshot anterior que tenha saído sem ele durante a gravação.
func (c *Controller) admitirLocked(ctx context.Context, novo demanda.Usuario) AuthResult {
	c.usuarios = append(append([]demanda.Usuario{}, c.usuarios...), novo)
	c.changedLocked(ctx, localstore.KeyUsuarios)
	c.logger.Info().Str("usuario_id", novo.ID).Msg("usuário cadastrado")
	return AuthResult{Sucesso: true, Usuario: &novo}
}

// UsuarioPorID restaura a sessão a partir do id guardado.
func (c *Controller) UsuarioPorID(id string) (demanda.Usuario, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.usuarios {
		if u.ID == id {
			return u, true
		}
	}
	return demanda.Usuario{}, false
}

// Responsaveis lista a projeção pública de todos os usuários.
func (c *Controller) Responsaveis() []demanda.Responsavel {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]demanda.Responsavel, 0, len(c.usuarios))
	for _, u := range c.usuarios {
		out = append(out, u.Responsavel())
	}
	return out
}
