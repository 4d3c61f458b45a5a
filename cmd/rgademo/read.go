package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s4vector/rga/engine"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Insert a short sequence locally and print the linearized read",
	RunE:  runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	var last engine.Anchor = engine.AbsentAnchor
	for _, word := range []string{"the", "quick", "fox"} {
		op, err := sess.a.Insert(word, last, engine.AbsentAnchor)
		if err != nil {
			return fmt.Errorf("local insert: %w", err)
		}
		last = engine.PresentAnchor(op.ID)
	}
	fmt.Printf("replica A read: %q\n", sess.a.Read())
	return nil
}
