package database

import "context"

const listStatus = `SELECT status_id, status_nome FROM status ORDER BY status_nome`

// ListStatus returns every status code ordered by name.
func (q *Queries) ListStatus(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listStatus)
}

const listTiposProduto = `SELECT tproduto_id, tproduto_nome FROM tipo_produto ORDER BY tproduto_nome`

func (q *Queries) ListTiposProduto(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listTiposProduto)
}

const listProdutos = `SELECT produto_id, produto_nome FROM produtos ORDER BY produto_nome`

func (q *Queries) ListProdutos(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listProdutos)
}

const listFornecedores = `SELECT fornecedor_id, fornecedor_nome FROM fornecedores ORDER BY fornecedor_nome`

func (q *Queries) ListFornecedores(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listFornecedores)
}

const listUnidades = `SELECT uni_id, uni_nome FROM unidade_medida ORDER BY uni_nome`

func (q *Queries) ListUnidades(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listUnidades)
}

const listClassificacoes = `SELECT classificacao_id, classificacao_nome FROM classificacao ORDER BY classificacao_nome`

func (q *Queries) ListClassificacoes(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listClassificacoes)
}

const listLocaisArmazenamento = `SELECT local_id, local_nome FROM local_armazenamento ORDER BY local_nome`

func (q *Queries) ListLocaisArmazenamento(ctx context.Context) ([]LookupRow, error) {
	return q.listLookup(ctx, listLocaisArmazenamento)
}

const produtoExists = `SELECT EXISTS (SELECT 1 FROM produtos WHERE produto_id = $1)`

func (q *Queries) ProdutoExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, produtoExists, id)
}

const fornecedorExists = `SELECT EXISTS (SELECT 1 FROM fornecedores WHERE fornecedor_id = $1)`

func (q *Queries) FornecedorExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, fornecedorExists, id)
}

const unidadeExists = `SELECT EXISTS (SELECT 1 FROM unidade_medida WHERE uni_id = $1)`

func (q *Queries) UnidadeExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, unidadeExists, id)
}

const tipoProdutoExists = `SELECT EXISTS (SELECT 1 FROM tipo_produto WHERE tproduto_id = $1)`

func (q *Queries) TipoProdutoExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, tipoProdutoExists, id)
}

const classificacaoExists = `SELECT EXISTS (SELECT 1 FROM classificacao WHERE classificacao_id = $1)`

func (q *Queries) ClassificacaoExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, classificacaoExists, id)
}

const localArmazenamentoExists = `SELECT EXISTS (SELECT 1 FROM local_armazenamento WHERE local_id = $1)`

func (q *Queries) LocalArmazenamentoExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, localArmazenamentoExists, id)
}

const statusExists = `SELECT EXISTS (SELECT 1 FROM status WHERE status_id = $1)`

func (q *Queries) StatusExists(ctx context.Context, id int32) (bool, error) {
	return q.lookupExists(ctx, statusExists, id)
}
