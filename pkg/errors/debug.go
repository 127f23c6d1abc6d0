package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-side view of an error: its code, the unwrap chain and
// any Postgres fields, plus the schema guard it tripped when known.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	Guard Code `json:"guard,omitempty"`
}

type schemaGuard struct {
	code    Code
	message string
}

// schemaGuards maps the named constraints in pkg/migrate/migrations to the
// settlement error a violation stands for.
var schemaGuards = map[string]schemaGuard{
	"listings_quantity_non_negative":    {CodeInsufficientQuantity, "listing stock would go negative"},
	"listings_live_price_positive":      {CodeListingUnavailable, "live listing has no valid price"},
	"orders_quantity_positive":          {CodeValidation, "order quantity must be positive"},
	"orders_buyer_not_seller":           {CodeInvalidActor, "sellers cannot purchase their own listing"},
	"orders_split_balanced":             {CodeInternal, "commission and seller net do not add up to the total"},
	"ledger_events_order_type_key":      {CodeConflict, "ledger movement already recorded for order"},
	"ledger_events_amount_non_negative": {CodeValidation, "ledger amount must not be negative"},
}

// GuardConstraints lists the constraint names FromStore knows how to map.
func GuardConstraints() []string {
	names := make([]string, 0, len(schemaGuards))
	for name := range schemaGuards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromStore wraps a persistence error. Violations of a known schema guard
// surface as the matching domain code; anything else gets fallback.
func FromStore(err error, fallback Code, msg string) *Error {
	if err == nil {
		return nil
	}
	if guard, ok := guardFor(err); ok {
		return Wrap(guard.code, err, guard.message)
	}
	return Wrap(fallback, err, msg)
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
	}

	if guard, ok := guardFor(err); ok {
		d.Guard = guard.code
	}
	return d
}

func guardFor(err error) (schemaGuard, bool) {
	name := constraintName(err)
	if name == "" {
		return schemaGuard{}, false
	}
	guard, ok := schemaGuards[name]
	return guard, ok
}

// constraintName reads the violated constraint from the driver error. SQLite
// only reports it in the message text.
func constraintName(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	msg := err.Error()
	if !strings.Contains(msg, "constraint failed") {
		return ""
	}
	for name := range schemaGuards {
		if strings.Contains(msg, name) {
			return name
		}
	}
	return ""
}
