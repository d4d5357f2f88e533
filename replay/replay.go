// Package replay parses order streams from CSV and feeds them through
// the engine pipeline.
//
// Grammar, one event per line:
//
//	type,order_id,trader_id,side,price,qty
//	L,1,0,B,10000,100    NewLimit Buy
//	N,2,1,S,,50          NewMarket Sell
//	C,1,,,,              Cancel
//	M,2,,,,75            Modify qty to 75
//
// The historical files use M for market orders too; a bare M with a
// non-empty side column is read as NewMarket, otherwise as Modify. X is
// accepted as an explicit Modify token. Blank lines and lines starting
// with # are skipped, as is a leading "type,..." header.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"vega/domain/market"
	"vega/infra/spsc"
)

// Record is one parsed CSV event.
type Record struct {
	Type     market.OrderType
	OrderID  market.OrderID
	TraderID market.TraderID
	Side     market.Side
	Price    market.Price
	Qty      market.Qty
}

// Event converts the record into a queue event stamped now.
func (r Record) Event() market.OrderEvent {
	switch r.Type {
	case market.NewLimit:
		return market.NewLimitEvent(r.OrderID, r.TraderID, r.Side, r.Price, r.Qty)
	case market.NewMarket:
		return market.NewMarketEvent(r.OrderID, r.TraderID, r.Side, r.Qty)
	case market.Cancel:
		return market.CancelEvent(r.OrderID)
	default:
		return market.ModifyEvent(r.OrderID, r.Qty, r.Price)
	}
}

// ParseFile reads all records from path.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseReader(f)
}

// ParseReader reads all records from r.
func ParseReader(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "type,") {
			continue
		}
		rec, ok, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseLine(line string) (Record, bool, error) {
	fields := strings.Split(line, ",")
	var rec Record

	if fields[0] == "" {
		return rec, false, nil
	}

	sideField := field(fields, 3)

	switch fields[0] {
	case "L":
		rec.Type = market.NewLimit
	case "N":
		rec.Type = market.NewMarket
	case "C":
		rec.Type = market.Cancel
	case "X":
		rec.Type = market.Modify
	case "M":
		// Legacy market rows carry a side; modifies never do.
		if sideField != "" {
			rec.Type = market.NewMarket
		} else {
			rec.Type = market.Modify
		}
	default:
		return rec, false, fmt.Errorf("unknown event type %q", fields[0])
	}

	if s := field(fields, 1); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return rec, false, fmt.Errorf("order_id: %w", err)
		}
		rec.OrderID = market.OrderID(v)
	}
	if s := field(fields, 2); s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return rec, false, fmt.Errorf("trader_id: %w", err)
		}
		rec.TraderID = market.TraderID(v)
	}
	if sideField != "" {
		switch sideField {
		case "B":
			rec.Side = market.Buy
		case "S":
			rec.Side = market.Sell
		default:
			return rec, false, fmt.Errorf("unknown side %q", sideField)
		}
	}
	if s := field(fields, 4); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return rec, false, fmt.Errorf("price: %w", err)
		}
		rec.Price = market.Price(v)
	}
	if s := field(fields, 5); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return rec, false, fmt.Errorf("qty: %w", err)
		}
		rec.Qty = market.Qty(v)
	}

	return rec, true, nil
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// Feed pushes every record onto the queue in file order, blocking on a
// full queue.
func Feed(q *spsc.Queue[market.OrderEvent], records []Record) {
	for _, rec := range records {
		q.Push(rec.Event())
	}
}
