package template

import (
	"fmt"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
)

// builtins is the complete allowlist of callable functions in safe
// mode. Adding an entry here is the only way to extend the grammar.
var builtins = map[string]func(env *Env, args []any) (any, error){
	"count":          evalCount,
	"sum":            aggregateBuiltin("sum", (*dataset.Table).Sum),
	"avg":            aggregateBuiltin("avg", (*dataset.Table).Avg),
	"min":            aggregateBuiltin("min", (*dataset.Table).Min),
	"max":            aggregateBuiltin("max", (*dataset.Table).Max),
	"formatNumber":   evalFormatNumber,
	"formatPercent":  evalFormatPercent,
	"formatCurrency": evalFormatCurrency,
	"formatDate":     evalFormatDate,
}

func evalCount(env *Env, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: count expects 1 argument, got %d", ErrEvaluation, len(args))
	}
	id, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: count expects a dataset name", ErrEvaluation)
	}
	table, err := env.Store.Table(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	return float64(table.Count()), nil
}

// aggregateBuiltin adapts one of the table aggregates to the calling
// convention sum(dataset, column). A column with no eligible values
// evaluates to nil, which renders as the no-data placeholder rather
// than an error.
func aggregateBuiltin(name string, agg func(*dataset.Table, int) (float64, bool)) func(*Env, []any) (any, error) {
	return func(env *Env, args []any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s expects 2 arguments, got %d", ErrEvaluation, name, len(args))
		}
		id, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a dataset name as its first argument", ErrEvaluation, name)
		}
		ref, err := toColumnRef(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEvaluation, name, err)
		}
		table, err := env.Store.Table(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
		}
		col, ok := table.Resolve(ref)
		if !ok {
			return nil, fmt.Errorf("%w: %w: column %s in dataset %q", ErrEvaluation, dataset.ErrUnresolvedColumn, ref, id)
		}
		v, ok := agg(table, col)
		if !ok {
			return nil, nil
		}
		return v, nil
	}
}

// toColumnRef converts an evaluated argument into a column reference:
// strings resolve by name, integral numbers by position.
func toColumnRef(v any) (dataset.ColumnRef, error) {
	switch x := v.(type) {
	case string:
		return dataset.Name(x), nil
	case float64:
		if x != float64(int(x)) {
			return dataset.ColumnRef{}, fmt.Errorf("column index must be an integer, got %v", x)
		}
		return dataset.Index(int(x)), nil
	case int:
		return dataset.Index(x), nil
	case int64:
		return dataset.Index(int(x)), nil
	default:
		return dataset.ColumnRef{}, fmt.Errorf("column must be a name or an index, got %T", v)
	}
}

func evalFormatNumber(_ *Env, args []any) (any, error) {
	v, digits, err := numberAndDigits("formatNumber", args, 2)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return format.NoData, nil
	}
	return format.Number(*v, digits), nil
}

func evalFormatPercent(_ *Env, args []any) (any, error) {
	v, digits, err := numberAndDigits("formatPercent", args, 2)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return format.NoData, nil
	}
	return format.Percent(*v, digits), nil
}

func evalFormatCurrency(_ *Env, args []any) (any, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("%w: formatCurrency expects 1 to 3 arguments, got %d", ErrEvaluation, len(args))
	}
	if args[0] == nil {
		return format.NoData, nil
	}
	v, err := numberArg("formatCurrency", args[0])
	if err != nil {
		return nil, err
	}

	symbol := ""
	digits := -1
	if len(args) >= 2 {
		s, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: formatCurrency expects a symbol string as its second argument", ErrEvaluation)
		}
		symbol = s
	}
	if len(args) == 3 {
		d, err := numberArg("formatCurrency", args[2])
		if err != nil {
			return nil, err
		}
		digits = int(d)
	}
	return format.Currency(v, symbol, digits), nil
}

func evalFormatDate(_ *Env, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: formatDate expects 1 argument, got %d", ErrEvaluation, len(args))
	}
	switch x := args[0].(type) {
	case nil:
		return format.NoData, nil
	case string:
		ts, ok := dataset.ParseDate(x)
		if !ok {
			return nil, fmt.Errorf("%w: formatDate cannot parse %q as a date", ErrEvaluation, x)
		}
		return format.Date(ts), nil
	case time.Time:
		return format.Date(x), nil
	default:
		return nil, fmt.Errorf("%w: formatDate expects a date value, got %T", ErrEvaluation, x)
	}
}

// numberAndDigits handles the (value, digits?) signature shared by
// formatNumber and formatPercent. A nil value passes through so the
// caller can render the no-data placeholder.
func numberAndDigits(name string, args []any, maxArgs int) (*float64, int, error) {
	if len(args) < 1 || len(args) > maxArgs {
		return nil, 0, fmt.Errorf("%w: %s expects 1 or 2 arguments, got %d", ErrEvaluation, name, len(args))
	}
	digits := -1
	if len(args) == 2 {
		d, err := numberArg(name, args[1])
		if err != nil {
			return nil, 0, err
		}
		digits = int(d)
	}
	if args[0] == nil {
		return nil, digits, nil
	}
	v, err := numberArg(name, args[0])
	if err != nil {
		return nil, 0, err
	}
	return &v, digits, nil
}

func numberArg(name string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: %s expects a numeric value, got %T", ErrEvaluation, name, v)
	}
}
