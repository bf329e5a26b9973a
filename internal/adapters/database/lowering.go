package database

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/dancescene/discovery/internal/search"
)

// Lowering of the store-agnostic predicate tree to goqu expressions. The
// tree's column names are compile-time constants owned by the search
// package; user input only ever reaches the store as bind parameters.

func lowerPredicate(p search.Predicate) (goqu.Expression, error) {
	switch node := p.(type) {
	case search.TextMatch:
		return lowerTextMatch(node), nil

	case search.Term:
		return goqu.I(node.Column).Eq(node.Value), nil

	case search.Range:
		col := goqu.I(node.Column)
		switch {
		case node.Min != nil && node.Max != nil:
			return goqu.And(col.Gte(node.Min), col.Lte(node.Max)), nil
		case node.Min != nil:
			return col.Gte(node.Min), nil
		case node.Max != nil:
			return col.Lte(node.Max), nil
		default:
			return nil, fmt.Errorf("range on %s has no bounds", node.Column)
		}

	case search.InSet:
		return goqu.I(node.Column).In(node.Values), nil

	case search.AnyTag:
		return goqu.L(node.Column+" && ?", pq.Array(node.Values)), nil

	case search.TagMatch:
		return goqu.L(
			"EXISTS (SELECT 1 FROM unnest("+node.Column+") AS tag WHERE tag ILIKE ?)",
			containsPattern(node.Query),
		), nil

	case search.ExistsIn:
		return lowerExists(node)

	case search.And:
		exprs, err := lowerList(node)
		if err != nil {
			return nil, err
		}
		return goqu.And(exprs...), nil

	case search.Or:
		exprs, err := lowerList(node)
		if err != nil {
			return nil, err
		}
		return goqu.Or(exprs...), nil

	default:
		return nil, fmt.Errorf("unknown predicate node %T", p)
	}
}

func lowerList(preds []search.Predicate) ([]goqu.Expression, error) {
	exprs := make([]goqu.Expression, 0, len(preds))
	for _, p := range preds {
		e, err := lowerPredicate(p)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func lowerTextMatch(node search.TextMatch) goqu.Expression {
	col := goqu.I(node.Column)
	switch node.Mode {
	case search.MatchExact:
		return goqu.Func("LOWER", col).Eq(strings.ToLower(node.Query))
	case search.MatchPrefix:
		return col.ILike(escapeLike(node.Query) + "%")
	default:
		return col.ILike(containsPattern(node.Query))
	}
}

func lowerExists(node search.ExistsIn) (goqu.Expression, error) {
	sub := goqu.Dialect("postgres").From(goqu.T(node.Table))
	if node.JoinTable != "" {
		sub = sub.Join(
			goqu.T(node.JoinTable),
			goqu.On(goqu.I(node.JoinOn[0]).Eq(goqu.I(node.JoinOn[1]))),
		)
	}

	inner, err := lowerPredicate(node.Where)
	if err != nil {
		return nil, err
	}

	sub = sub.
		Where(goqu.I(node.Table+"."+node.Link).Eq(goqu.I(node.Parent))).
		Where(inner).
		Select(goqu.L("1"))

	return goqu.L("EXISTS ?", sub), nil
}

// lowerScore turns the weighted-match hierarchy into a single GREATEST
// expression. The caller reuses the returned expression for the selection
// filter, the projected relevance_score, and the ordering clause.
func lowerScore(score *search.ScoreExpr) (exp.SQLFunctionExpression, error) {
	args := make([]interface{}, 0, len(score.Conditions))
	for _, c := range score.Conditions {
		cond, err := lowerPredicate(c.Cond)
		if err != nil {
			return nil, err
		}
		args = append(args, goqu.L("CASE WHEN ? THEN ? ELSE 0 END", cond, c.Weight))
	}
	return goqu.Func("GREATEST", args...), nil
}

// escapeLike neutralizes LIKE metacharacters in user input
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}
