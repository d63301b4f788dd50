// Command viewer dumps the room store as tables. It opens the database
// read-only and bypasses the lock guard, so it can run next to the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Local mirrors of the persisted record layouts.
type diskParticipant struct {
	Name     string
	LastSeen int64
}

type diskMessage struct {
	ID   string
	From string
	To   string
	Text string
	Kind string
	Time string
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.Cyan.Println("Participants")
	if err := printParticipants(db); err != nil {
		log.Fatal(err)
	}

	color.Cyan.Println("Messages")
	if err := printMessages(db); err != nil {
		log.Fatal(err)
	}
}

func printParticipants(db *badger.DB) error {
	table := newTable("Name", "Last Seen")
	err := scan(db, "participant:", func(val []byte) error {
		var dp diskParticipant
		if err := cbor.Unmarshal(val, &dp); err != nil {
			return err
		}
		table.Append([]string{dp.Name, time.Unix(0, dp.LastSeen).UTC().Format(time.RFC3339)})
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func printMessages(db *badger.DB) error {
	table := newTable("ID", "From", "To", "Kind", "Time", "Text")
	err := scan(db, "msg:", func(val []byte) error {
		var dm diskMessage
		if err := cbor.Unmarshal(val, &dm); err != nil {
			return err
		}
		table.Append([]string{dm.ID, dm.From, dm.To, dm.Kind, dm.Time, dm.Text})
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func scan(db *badger.DB, prefix string, visit func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				if err := visit(v); err != nil {
					// Keep scanning; one bad record should not hide the rest.
					fmt.Printf("Error decoding key %s: %v\n", string(it.Item().Key()), err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
