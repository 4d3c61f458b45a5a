package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s4vector/rga/engine"
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Demonstrate two replicas converging after independent local inserts",
	RunE:  runInsert,
}

func runInsert(cmd *cobra.Command, args []string) error {
	opHello, err := sess.a.Insert("hello", engine.AbsentAnchor, engine.AbsentAnchor)
	if err != nil {
		return fmt.Errorf("local insert on A: %w", err)
	}
	if err := sess.deliver(opHello, sess.a); err != nil {
		return err
	}

	opWorld, err := sess.a.Insert("world", engine.PresentAnchor(opHello.ID), engine.AbsentAnchor)
	if err != nil {
		return fmt.Errorf("local insert on A: %w", err)
	}
	if err := sess.deliver(opWorld, sess.a); err != nil {
		return err
	}

	opThere, err := sess.b.Insert("there", engine.PresentAnchor(opHello.ID), engine.PresentAnchor(opWorld.ID))
	if err != nil {
		return fmt.Errorf("local insert on B: %w", err)
	}
	if err := sess.deliver(opThere, sess.b); err != nil {
		return err
	}

	sess.printReads("after inserts")
	return nil
}
