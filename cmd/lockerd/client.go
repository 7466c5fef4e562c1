package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/liveforeverx/locker/internal/transport"
	"github.com/spf13/cobra"
)

func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *transport.Client) error) error {
	addr, _ := cmd.Flags().GetString("server")

	client, err := transport.DialClient(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return fn(ctx, client)
}

var (
	lockCmd = &cobra.Command{
		Use:   "lock [key] [value]",
		Short: "Create a key on a write quorum",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lease, _ := cmd.Flags().GetInt64("lease-ms")
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.Lock(ctx, args[0], []byte(args[1]), lease)
				if err != nil {
					return err
				}
				fmt.Printf("ok w=%d voted=%d committed=%d\n", reply.W, reply.Voted, reply.Committed)
				return nil
			})
		},
	}

	releaseCmd = &cobra.Command{
		Use:   "release [key] [value]",
		Short: "Delete a key, proving ownership of its value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.Release(ctx, args[0], []byte(args[1]))
				if err != nil {
					return err
				}
				fmt.Printf("ok w=%d voted=%d committed=%d\n", reply.W, reply.Voted, reply.Committed)
				return nil
			})
		},
	}

	extendCmd = &cobra.Command{
		Use:   "extend [key] [value] [extend-ms]",
		Short: "Extend the lease of a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			extend, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("extend-ms must be a number: %w", err)
			}
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.ExtendLease(ctx, args[0], []byte(args[1]), extend)
				if err != nil {
					return err
				}
				fmt.Printf("ok w=%d voted=%d committed=%d\n", reply.W, reply.Voted, reply.Committed)
				return nil
			})
		},
	}

	readCmd = &cobra.Command{
		Use:   "read [key]",
		Short: "Dirty-read a key from one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.DirtyRead(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("status=%s value=%s\n", reply.Status, reply.Value)
				return nil
			})
		},
	}

	nodesCmd = &cobra.Command{
		Use:   "nodes",
		Short: "Show the membership view of a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.GetNodes(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("w=%d\n", reply.W)
				for id, addr := range reply.Primaries {
					fmt.Printf("primary %d: %s\n", id, addr)
				}
				for id, addr := range reply.Replicas {
					fmt.Printf("replica %d: %s\n", id, addr)
				}
				return nil
			})
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Dump the debug state of a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *transport.Client) error {
				reply, err := c.GetDebugState(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("lock_sweep_ms=%d lease_sweep_ms=%d\n", reply.LockSweepMS, reply.LeaseSweepMS)
				for _, l := range reply.Locks {
					fmt.Printf("lock tag=%d key=%s acquired_ms=%d\n", l.Tag, l.Key, l.AcquiredMS)
				}
				for _, e := range reply.Entries {
					fmt.Printf("entry key=%s value=%s lease_expiry_ms=%d\n", e.Key, e.Value, e.LeaseExpiryMS)
				}
				return nil
			})
		},
	}
)

func init() {
	lockCmd.Flags().Int64("lease-ms", 0, "lease length in milliseconds (0 uses the server default)")
}
