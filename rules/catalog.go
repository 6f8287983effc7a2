//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
// They catch mistakes specific to the catalog code base.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TransactionUsesTx detects use of the manager's own connection inside a
// transaction callback. SQLite runs on a single pooled connection, so the
// nested query blocks until the transaction ends and the callback never does.
//
// Wrong:
//
//	store.Transaction(ctx, "op", func(tx *gorm.DB) error {
//	    return repository.NewImageRepository(store.DB()).Get(ctx, id)
//	})
//
// Right:
//
//	store.Transaction(ctx, "op", func(tx *gorm.DB) error {
//	    return repository.NewImageRepository(tx).Get(ctx, id)
//	})
func TransactionUsesTx(m dsl.Matcher) {
	m.Match(`$store.Transaction($ctx, $op, func($tx *gorm.DB) error { $*body })`).
		Where(m["body"].Contains(`$store.DB()`)).
		Report(`use $tx instead of $store.DB() inside the $op transaction`)
}

// LoggerErrorField prefers the typed error field over a stringified error.
func LoggerErrorField(m dsl.Matcher) {
	m.Match(`logger.String("error", $err.Error())`).
		Report(`use logger.Error($err)`).
		Suggest(`logger.Error($err)`)
}

// SquaredPow prefers multiplication over math.Pow for squares in the
// astrometry hot paths.
func SquaredPow(m dsl.Matcher) {
	m.Match(`math.Pow($x, 2)`).
		Where(m["x"].Pure).
		Report(`use $x * $x instead of math.Pow($x, 2)`).
		Suggest(`$x * $x`)
}

// WaitGroupModernize detects goroutines started with the Add/Done pairing
// that wg.Go replaces.
func WaitGroupModernize(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }() (Go 1.25+)").
		Suggest("$wg.Go(func() { $*_ })")
}
