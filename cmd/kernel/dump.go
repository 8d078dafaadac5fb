package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Dump vuelca la memoria de usuario de la tarea: cada página mapeada, en orden de va.
// Devuelve las rutas de los archivos generados.
func (k *Kernel) Dump(pid int) (archivos []string, err error) {
	k.nucleo.Seccion(func() {
		t, existe := k.tareas[pid]
		if !existe {
			err = fmt.Errorf("%w: %d", ErrTareaInexistente, pid)
			return
		}
		archivos, err = k.crearMemoryDump(t, time.Now())
	})
	return archivos, err
}

func (k *Kernel) crearMemoryDump(t *Tarea, ahora time.Time) ([]string, error) {
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d Memory Dump solicitado", t.PID))

	if err := os.MkdirAll(k.config.DumpPath, 0755); err != nil {
		return nil, fmt.Errorf("error al crear directorio para dumps: %w", err)
	}

	base := filepath.Join(k.config.DumpPath, fmt.Sprintf("%d-%s", t.PID, ahora.Format("20060102-150405")))
	rutaDump := base + ".dmp"

	dumpFile, err := os.Create(rutaDump)
	if err != nil {
		return nil, fmt.Errorf("error al crear archivo de dump: %w", err)
	}
	defer dumpFile.Close()

	paginas := t.Tabla.PaginasMapeadas()
	for _, pagina := range paginas {
		if _, err := dumpFile.Write(k.pool.Pagina(pagina.Marco)); err != nil {
			return nil, fmt.Errorf("error al escribir en archivo de dump: %w", err)
		}
	}
	archivos := []string{rutaDump}

	if k.config.DumpImage {
		rutaImagen := base + ".png"
		if err := dibujarMapa(rutaImagen, t.PID, paginas); err != nil {
			return archivos, err
		}
		archivos = append(archivos, rutaImagen)
	}

	utils.InfoLog.Info("Memory dump completado", "pid", t.PID, "paginas", len(paginas), "archivos", archivos)
	return archivos, nil
}
