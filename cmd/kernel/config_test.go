package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

func TestLeerConfiguracionKernel(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "kernel.json")
	contenido := `{
		"IP_KERNEL": "127.0.0.1",
		"PUERTO_KERNEL": 8001,
		"LOG_LEVEL": "DEBUG",
		"TAM_MEMORIA": 65536,
		"BASE_HEAP": 20000,
		"CONSOLA": "stdout",
		"RETARDO_SYSCALL": 5
	}`
	if err := os.WriteFile(ruta, []byte(contenido), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := utils.LeerConfiguracion[KernelConfig](ruta)
	if err != nil {
		t.Fatalf("LeerConfiguracion: %v", err)
	}
	cfg.completarDefaults()

	if cfg.PortKernel != 8001 || cfg.MemorySize != 65536 || cfg.SyscallDelay != 5 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.HeapBase != 0x5000 {
		t.Errorf("BASE_HEAP = %#x, se esperaba redondeado a 0x5000", cfg.HeapBase)
	}
	if cfg.CPUFrequency != utils.FrecuenciaCPU {
		t.Errorf("FRECUENCIA_CPU = %d, se esperaba el valor por defecto", cfg.CPUFrequency)
	}
	if cfg.DumpPath != "dumps" {
		t.Errorf("DUMP_PATH = %q", cfg.DumpPath)
	}
}

func TestLeerConfiguracionInexistente(t *testing.T) {
	if _, err := utils.LeerConfiguracion[KernelConfig](filepath.Join(t.TempDir(), "no-existe.json")); err == nil {
		t.Error("se esperaba un error")
	}
}

func TestAbrirConsola(t *testing.T) {
	for _, nombre := range []string{"", "stdout"} {
		consola, cerrar, err := abrirConsola(&KernelConfig{Console: nombre})
		if err != nil {
			t.Fatalf("consola %q: %v", nombre, err)
		}
		if _, ok := consola.(*consolaWriter); !ok {
			t.Errorf("consola %q es %T", nombre, consola)
		}
		if err := cerrar(); err != nil {
			t.Error(err)
		}
	}

	if _, _, err := abrirConsola(&KernelConfig{Console: "serie"}); !errors.Is(err, ErrArgumentoInvalido) {
		t.Errorf("consola desconocida: err = %v", err)
	}
}

func TestRelojMonotonico(t *testing.T) {
	reloj := nuevoRelojMonotonico(utils.FrecuenciaCPU)
	antes := reloj.Ciclos()
	despues := reloj.Ciclos()
	if despues < antes {
		t.Errorf("el contador retrocedió: %d -> %d", antes, despues)
	}
}
