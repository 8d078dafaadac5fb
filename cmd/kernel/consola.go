package main

import (
	"fmt"
	"io"
	"os"

	tty "github.com/mattn/go-tty"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Consola es el driver de la consola: recibe un byte por vez
type Consola interface {
	PutChar(c byte)
}

// consolaWriter emite cada byte sobre un io.Writer (stdout por defecto)
type consolaWriter struct {
	w io.Writer
}

func (c *consolaWriter) PutChar(b byte) {
	if _, err := c.w.Write([]byte{b}); err != nil {
		utils.ErrorLog.Error("Error escribiendo en consola", "error", err)
	}
}

// consolaTTY emite sobre una terminal real
type consolaTTY struct {
	tty *tty.TTY
}

func (c *consolaTTY) PutChar(b byte) {
	if _, err := c.tty.Output().Write([]byte{b}); err != nil {
		utils.ErrorLog.Error("Error escribiendo en la terminal", "error", err)
	}
}

// abrirConsola elige el dispositivo según CONSOLA. El cierre devuelto libera la terminal.
func abrirConsola(cfg *KernelConfig) (Consola, func() error, error) {
	switch cfg.Console {
	case "", "stdout":
		return &consolaWriter{w: os.Stdout}, func() error { return nil }, nil
	case "tty":
		var (
			t   *tty.TTY
			err error
		)
		if cfg.TTYPath != "" {
			t, err = tty.OpenDevice(cfg.TTYPath)
		} else {
			t, err = tty.Open()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("no se pudo abrir la terminal %q: %w", cfg.TTYPath, err)
		}
		utils.InfoLog.Info("Consola sobre terminal", "dispositivo", cfg.TTYPath)
		return &consolaTTY{tty: t}, t.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: consola %q", ErrArgumentoInvalido, cfg.Console)
}
