package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Instruccion es una línea decodificada del script de la tarea
type Instruccion struct {
	Operacion string
	Syscall   int     // id de syscall, -1 si no es una
	Args      []int64 // argumentos numéricos (a0..a5 para las syscalls)
	Texto     string  // contenido de STORE
}

// aridad de cada instrucción que se traduce a un ecall
var syscallsPorInstruccion = map[string]struct {
	id     int
	aridad int
}{
	"WRITE":        {utils.SyscallWrite, 3},
	"EXIT":         {utils.SyscallExit, 1},
	"YIELD":        {utils.SyscallYield, 0},
	"GETTIMEOFDAY": {utils.SyscallGetTimeOfDay, 1},
	"SBRK":         {utils.SyscallSbrk, 1},
	"MUNMAP":       {utils.SyscallMunmap, 2},
	"MMAP":         {utils.SyscallMmap, 3},
	"TASK_INFO":    {utils.SyscallTaskInfo, 1},
}

// parsearNumero acepta decimal, hexa (0x) y negativos
func parsearNumero(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("valor numérico inválido %q", s)
	}
	return int64(v), nil
}

func parsearNumeros(parametros []string) ([]int64, error) {
	valores := make([]int64, 0, len(parametros))
	for _, p := range parametros {
		v, err := parsearNumero(p)
		if err != nil {
			return nil, err
		}
		valores = append(valores, v)
	}
	return valores, nil
}

// decodificar interpreta una línea del script. Las líneas vacías y los
// comentarios (#) devuelven una instrucción con Operacion vacía.
func decodificar(linea string) (Instruccion, error) {
	linea = strings.TrimSpace(linea)
	if linea == "" || strings.HasPrefix(linea, "#") {
		return Instruccion{Syscall: -1}, nil
	}

	partes := strings.Fields(linea)
	operacion := strings.ToUpper(partes[0])
	parametros := partes[1:]
	inst := Instruccion{Operacion: operacion, Syscall: -1}

	switch operacion {
	case "NOOP":
		return inst, nil

	case "STORE":
		// STORE <direccion> <texto>: el texto se guarda terminado en NUL
		if len(parametros) < 2 {
			return inst, fmt.Errorf("STORE: parámetros insuficientes %v", parametros)
		}
		direccion, err := parsearNumero(parametros[0])
		if err != nil {
			return inst, fmt.Errorf("STORE: %w", err)
		}
		resto := strings.TrimSpace(linea[len(partes[0]):])
		texto := strings.TrimSpace(resto[len(parametros[0]):])
		if strings.HasPrefix(texto, `"`) {
			if texto, err = strconv.Unquote(texto); err != nil {
				return inst, fmt.Errorf("STORE: texto mal entrecomillado: %w", err)
			}
		}
		inst.Args = []int64{direccion}
		inst.Texto = texto + "\x00"
		return inst, nil

	case "LOAD":
		// LOAD <direccion> <tamanio>
		if len(parametros) != 2 {
			return inst, fmt.Errorf("LOAD: se esperan 2 parámetros, hay %d", len(parametros))
		}
		args, err := parsearNumeros(parametros)
		if err != nil {
			return inst, fmt.Errorf("LOAD: %w", err)
		}
		inst.Args = args
		return inst, nil

	case "SYSCALL":
		// SYSCALL <id|nombre> [a0..a5]: ecall crudo
		if len(parametros) < 1 || len(parametros) > 7 {
			return inst, fmt.Errorf("SYSCALL: cantidad de parámetros inválida (%d)", len(parametros))
		}
		if id, ok := utils.SyscallPorNombre(strings.ToLower(parametros[0])); ok {
			inst.Syscall = id
		} else {
			id, err := parsearNumero(parametros[0])
			if err != nil {
				return inst, fmt.Errorf("SYSCALL: %w", err)
			}
			inst.Syscall = int(id)
		}
		args, err := parsearNumeros(parametros[1:])
		if err != nil {
			return inst, fmt.Errorf("SYSCALL: %w", err)
		}
		inst.Args = args
		return inst, nil
	}

	sc, existe := syscallsPorInstruccion[operacion]
	if !existe {
		return inst, fmt.Errorf("instrucción desconocida %q", operacion)
	}
	if operacion == "EXIT" && len(parametros) == 0 {
		parametros = []string{"0"}
	}
	if len(parametros) != sc.aridad {
		return inst, fmt.Errorf("%s: se esperan %d parámetros, hay %d", operacion, sc.aridad, len(parametros))
	}
	args, err := parsearNumeros(parametros)
	if err != nil {
		return inst, fmt.Errorf("%s: %w", operacion, err)
	}
	inst.Syscall = sc.id
	inst.Args = args
	return inst, nil
}
