package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

func (a *App) uploadPhoto(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: photo <id> <file>", ErrUsage)
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(args[1]))
	if err := a.backend.UploadPhoto(ctx, args[0], f, info.Size(), contentType); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Photo uploaded.")
	return nil
}

func (a *App) photoURL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: photo-url <id>", ErrUsage)
	}

	u, err := a.backend.PhotoURL(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, u)
	return nil
}
