package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s4vector/rga/engine"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Demonstrate a local update propagating to the peer replica",
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	op, err := sess.a.Insert("draft", engine.AbsentAnchor, engine.AbsentAnchor)
	if err != nil {
		return fmt.Errorf("local insert on A: %w", err)
	}
	if err := sess.deliver(op, sess.a); err != nil {
		return err
	}

	sess.printReads("before update")

	opUpdate, err := sess.a.Update(op.ID, "final")
	if err != nil {
		return fmt.Errorf("local update on A: %w", err)
	}
	if err := sess.deliver(opUpdate, sess.a); err != nil {
		return err
	}

	sess.printReads("after update")
	return nil
}
