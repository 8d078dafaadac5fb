package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Kernel es la máquina simulada: un núcleo, la memoria física y las tareas vivas
type Kernel struct {
	config       *KernelConfig
	pool         *PoolMarcos
	tareas       map[int]*Tarea
	proximoPID   int
	planificador Planificador
	reloj        Reloj
	consola      Consola
	nucleo       *utils.Semaforo
}

// NuevoKernel arma el kernel con sus colaboradores externos
func NuevoKernel(cfg *KernelConfig, reloj Reloj, consola Consola) *Kernel {
	cfg.completarDefaults()

	k := &Kernel{
		config:  cfg,
		pool:    NuevoPoolMarcos(cfg.MemorySize),
		tareas:  make(map[int]*Tarea),
		reloj:   reloj,
		consola: consola,
		nucleo:  utils.NewSemaforo(1),
	}
	k.planificador = nuevoPlanificadorFIFO(k.liberarTarea)
	return k
}

// CrearTarea hace de cargador: crea el espacio de direcciones y deja la tarea en READY.
// Con pid < 0 se genera uno nuevo.
func (k *Kernel) CrearTarea(pid int) (t *Tarea, err error) {
	k.nucleo.Seccion(func() {
		t, err = k.crearTarea(pid)
	})
	return t, err
}

func (k *Kernel) crearTarea(pid int) (*Tarea, error) {
	if pid < 0 {
		pid = k.proximoPID
	}
	if _, existe := k.tareas[pid]; existe {
		return nil, fmt.Errorf("%w: ya existe la tarea %d", ErrArgumentoInvalido, pid)
	}
	if pid >= k.proximoPID {
		k.proximoPID = pid + 1
	}

	tabla, err := NuevaTablaPaginas(k.pool)
	if err != nil {
		utils.ErrorLog.Error("No se pudo crear la tabla de páginas", "pid", pid, "error", err)
		return nil, err
	}

	t := &Tarea{
		PID:          pid,
		Tabla:        tabla,
		BaseHeap:     k.config.HeapBase,
		Break:        k.config.HeapBase,
		Estado:       TareaSinIniciar,
		InicioCiclos: k.reloj.Ciclos(),
	}
	k.tareas[pid] = t
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Se crea el proceso - Estado: %s", pid, t.Estado))

	k.planificador.Admitir(t)
	return t, nil
}

// Trap es la entrada desde modo usuario: la tarea pid pasa a ser la actual y se
// atiende la syscall de su trapframe. Devuelve true si la tarea terminó.
func (k *Kernel) Trap(pid int, tf *Trapframe) (finalizada bool, err error) {
	k.nucleo.Seccion(func() {
		t, existe := k.tareas[pid]
		if !existe {
			err = fmt.Errorf("%w: %d", ErrTareaInexistente, pid)
			return
		}
		k.planificador.Ejecutar(t)
		finalizada = k.syscall(t, tf)
	})
	return finalizada, err
}

// EscribirMemoria es un store de la tarea sobre su propia memoria virtual
func (k *Kernel) EscribirMemoria(pid int, va uint64, datos []byte) (err error) {
	k.nucleo.Seccion(func() {
		t, existe := k.tareas[pid]
		if !existe {
			err = fmt.Errorf("%w: %d", ErrTareaInexistente, pid)
			return
		}
		err = storeUsuario(t.Tabla, va, datos)
		t.Metricas.registrarAcceso(true, err)
	})
	return err
}

// LeerMemoria es un load de la tarea sobre su propia memoria virtual
func (k *Kernel) LeerMemoria(pid int, va uint64, tamanio int) (datos []byte, err error) {
	k.nucleo.Seccion(func() {
		t, existe := k.tareas[pid]
		if !existe {
			err = fmt.Errorf("%w: %d", ErrTareaInexistente, pid)
			return
		}
		if tamanio < 0 {
			err = fmt.Errorf("%w: tamaño %d", ErrArgumentoInvalido, tamanio)
			return
		}
		datos = make([]byte, tamanio)
		err = loadUsuario(t.Tabla, datos, va)
		t.Metricas.registrarAcceso(false, err)
		if err != nil {
			datos = nil
		}
	})
	return datos, err
}

// Tarea devuelve la tarea viva con ese pid
func (k *Kernel) Tarea(pid int) (*Tarea, bool) {
	var (
		t      *Tarea
		existe bool
	)
	k.nucleo.Seccion(func() {
		t, existe = k.tareas[pid]
	})
	return t, existe
}

// MarcosLibres devuelve cuántos marcos quedan en el pool
func (k *Kernel) MarcosLibres() int {
	var libres int
	k.nucleo.Seccion(func() {
		libres = k.pool.Libres()
	})
	return libres
}

// liberarTarea es el teardown que usa el planificador al finalizar una tarea
func (k *Kernel) liberarTarea(t *Tarea) {
	liberados := t.Tabla.Destruir()
	delete(k.tareas, t.PID)
	t.Metricas.loguear(t.PID)
	utils.InfoLog.Info("Memoria de la tarea liberada", "pid", t.PID, "marcos_liberados", liberados, "marcos_libres", k.pool.Libres())
}
