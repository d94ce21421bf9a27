package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nitya2202/ocr-string-validation-tool/internal/dataset"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
)

// coordsCmd groups coordinate annotation helpers.
var coordsCmd = &cobra.Command{
	Use:   "coords",
	Short: "Inspect string coordinate annotations",
	Long:  "Helpers for auditing the string coordinate annotations the validation run crops by.",
}

// coordsPreviewCmd represents the coords preview command.
var coordsPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render annotation boxes onto screenshot copies",
	Long: `Draws every annotated string region onto a copy of its screenshot.

Each box is labeled with the expected string id, so misplaced or stale
annotations show up at a glance. Screenshots without annotations and
annotations without screenshots are reported but do not abort the run.

Examples:
  ocrval coords preview
  ocrval coords preview --dest ./annotated`,
	SilenceUsage: true,
	RunE:         runCoordsPreviewCommand,
}

func init() {
	rootCmd.AddCommand(coordsCmd)
	coordsCmd.AddCommand(coordsPreviewCmd)

	coordsPreviewCmd.Flags().String("dest", "", "directory for annotated copies (default <output-dir>/annotated)")
}

var annotationColor = color.RGBA{R: 255, A: 255}

func runCoordsPreviewCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	destDir, _ := cmd.Flags().GetString("dest")
	if destDir == "" {
		destDir = filepath.Join(cfg.OutputDir, "annotated")
	}

	ctx := cmd.Context()
	loader := dataset.NewFileLoader(cfg.TestProtocolPath(), cfg.ExpectedStringsPath(), cfg.CoordinatesPath())

	steps, err := loader.LoadTestProtocol(ctx)
	if err != nil {
		return err
	}
	coords, err := loader.LoadCoordinates(ctx)
	if err != nil {
		return err
	}

	written, err := renderPreviews(cmd, cfg.ScreenshotsDir(), destDir, steps, coords)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Annotated %d screenshots into %s\n", written, destDir)
	return nil
}

// renderPreviews draws the annotation boxes of every screen onto a copy of
// its screenshot and returns the number of files written.
func renderPreviews(cmd *cobra.Command, screenshotDir, destDir string, steps []model.TestStep, coords model.CoordinateIndex) (int, error) {
	byScreen := make(map[string][]model.TestStep)
	var screens []string
	for _, step := range steps {
		if _, seen := byScreen[step.ScreenID]; !seen {
			screens = append(screens, step.ScreenID)
		}
		byScreen[step.ScreenID] = append(byScreen[step.ScreenID], step)
	}

	written := 0
	for _, screen := range screens {
		name := screen + ".png"
		img, err := utils.LoadImage(filepath.Join(screenshotDir, name))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %v\n", name, err)
			continue
		}

		canvas := image.NewRGBA(img.Bounds())
		draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

		annotated := 0
		for _, step := range byScreen[screen] {
			box, ok := coords[step.Key()]
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "No coordinates for step %s on %s\n", step.StepID, screen)
				continue
			}
			utils.DrawRect(canvas, box.Rect(), annotationColor, 2)
			drawLabel(canvas, box.Rect(), step.ExpectedStringID)
			annotated++
		}
		if annotated == 0 {
			continue
		}

		if err := utils.SaveImage(canvas, filepath.Join(destDir, name)); err != nil {
			return written, fmt.Errorf("failed to save annotated %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

// drawLabel writes the string id just above the annotation box, or inside
// its top edge when the box touches the top of the image.
func drawLabel(canvas *image.RGBA, box image.Rectangle, label string) {
	const fontHeight = 13

	y := box.Min.Y - 3
	if y < fontHeight {
		y = box.Min.Y + fontHeight
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(annotationColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(box.Min.X, y),
	}
	drawer.DrawString(label)
}
