package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s4vector/rga/engine"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Demonstrate a tombstoned node dropping out of Read on both replicas",
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	opA, err := sess.a.Insert("temporary", engine.AbsentAnchor, engine.AbsentAnchor)
	if err != nil {
		return fmt.Errorf("local insert on A: %w", err)
	}
	if err := sess.deliver(opA, sess.a); err != nil {
		return err
	}

	opB, err := sess.a.Insert("permanent", engine.PresentAnchor(opA.ID), engine.AbsentAnchor)
	if err != nil {
		return fmt.Errorf("local insert on A: %w", err)
	}
	if err := sess.deliver(opB, sess.a); err != nil {
		return err
	}

	sess.printReads("before delete")

	opDel, err := sess.a.Delete(opA.ID)
	if err != nil {
		return fmt.Errorf("local delete on A: %w", err)
	}
	if err := sess.deliver(opDel, sess.a); err != nil {
		return err
	}

	sess.printReads("after delete")
	return nil
}
