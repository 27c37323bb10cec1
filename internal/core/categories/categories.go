// Package categories registers the lookup categories served to the batch form.
//
// Import for side effects:
//
//	import _ "github.com/JonMunkholm/lotes/internal/core/categories"
package categories

import (
	"context"

	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/JonMunkholm/lotes/internal/database"
)

type listQuery func(q *database.Queries, ctx context.Context) ([]database.LookupRow, error)
type existsQuery func(q *database.Queries, ctx context.Context, id int32) (bool, error)

func list(fn listQuery) core.ListFunc {
	return func(ctx context.Context, db core.DBTX) ([]core.Option, error) {
		rows, err := fn(database.New(db), ctx)
		if err != nil {
			return nil, err
		}
		return core.OptionsFromRows(rows), nil
	}
}

func exists(fn existsQuery) core.ExistsFunc {
	return func(ctx context.Context, db core.DBTX, id int32) (bool, error) {
		return fn(database.New(db), ctx, id)
	}
}

func init() {
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "status", Label: "Status", Order: 10, Bundled: true},
		List:   list((*database.Queries).ListStatus),
		Exists: exists((*database.Queries).StatusExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "tipos", Label: "Tipo", Order: 20, Bundled: true},
		List:   list((*database.Queries).ListTiposProduto),
		Exists: exists((*database.Queries).TipoProdutoExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "produtos", Label: "Produto", Order: 30, Bundled: true},
		List:   list((*database.Queries).ListProdutos),
		Exists: exists((*database.Queries).ProdutoExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "fornecedores", Label: "Fornecedor", Order: 40, Bundled: true},
		List:   list((*database.Queries).ListFornecedores),
		Exists: exists((*database.Queries).FornecedorExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "unidades", Label: "Unidade", Order: 50, Bundled: true},
		List:   list((*database.Queries).ListUnidades),
		Exists: exists((*database.Queries).UnidadeExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "classificacoes", Label: "Classificação", Order: 60, Bundled: true},
		List:   list((*database.Queries).ListClassificacoes),
		Exists: exists((*database.Queries).ClassificacaoExists),
	})
	core.Register(core.CategoryDefinition{
		Info:   core.CategoryInfo{Key: "locaisArmazenamento", Label: "Armazenado em", Order: 70, Bundled: true},
		List:   list((*database.Queries).ListLocaisArmazenamento),
		Exists: exists((*database.Queries).LocalArmazenamentoExists),
	})
}
