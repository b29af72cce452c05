package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dwisim/pkg/intensity"
	"dwisim/pkg/visualization"
)

func newPhantomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phantom",
		Short: "Write the 128x128 test phantom as an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			// Raw intensities (0, 100, 255) map straight to gray levels
			img, err := visualization.NewViewer(intensity.DefaultPhantom()).Render(0, 255)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("out")
			if err := visualization.SaveSlice(img, path); err != nil {
				return fmt.Errorf("failed to save phantom: %w", err)
			}
			logger.WithField("path", path).Info("phantom written")
			return nil
		},
	}

	cmd.Flags().String("out", "phantom.png", "Output image (.png or .jpg)")

	return cmd
}
