package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// detenerMaquina se reemplaza en los tests
var detenerMaquina = os.Exit

// registrarHandlers registra todos los manejadores HTTP del kernel
func registrarHandlers(m *utils.Modulo, k *Kernel) {
	m.RegistrarHandler(utils.MensajeHandshake, "default", handlerHandshake)
	m.RegistrarHandler(utils.MensajeInicializarProceso, "default", conDetencion(handlerInicializarProceso(k)))
	m.RegistrarHandler(utils.MensajeSyscall, "default", conDetencion(handlerSyscall(k)))
	m.RegistrarHandler(utils.MensajeEscribir, "default", conDetencion(handlerEscribirMemoria(k)))
	m.RegistrarHandler(utils.MensajeLeer, "default", conDetencion(handlerLeerMemoria(k)))
	m.RegistrarHandler(utils.MensajeMemoryDump, "default", conDetencion(handlerMemoryDump(k)))

	utils.InfoLog.Info("Handlers registrados correctamente")
}

// conDetencion convierte una violación de invariante en la detención del módulo.
// net/http recupera los pánicos de cada request, así que hay que cortar acá.
func conDetencion(h utils.HTTPHandlerFunc) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (respuesta interface{}, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if v, ok := r.(*ViolacionInvariante); ok {
				utils.ErrorLog.Error("Máquina detenida", "motivo", v.Motivo, "origen", msg.Origen)
				detenerMaquina(1)
				respuesta, err = nil, v
				return
			}
			panic(r)
		}()
		return h(msg)
	}
}

func respuestaError(err error) map[string]interface{} {
	return map[string]interface{}{"status": "ERROR", "mensaje": err.Error()}
}

func handlerHandshake(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Handshake recibido", "origen", msg.Origen)
	return map[string]interface{}{
		"status":     "OK",
		"tam_pagina": utils.TamPagina,
	}, nil
}

func handlerInicializarProceso(k *Kernel) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (interface{}, error) {
		datos, err := utils.DatosMensaje(msg)
		if err != nil {
			return respuestaError(err), nil
		}
		pid, ok := utils.ExtraerEntero(datos, "pid")
		if !ok {
			pid = -1
		}

		t, err := k.CrearTarea(int(pid))
		if err != nil {
			utils.ErrorLog.Error("No se pudo crear la tarea", "pid", pid, "error", err)
			return respuestaError(err), nil
		}
		return map[string]interface{}{"status": "OK", "pid": t.PID}, nil
	}
}

// handlerSyscall recibe el trapframe de la CPU: {pid, id, args[6]}
func handlerSyscall(k *Kernel) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (interface{}, error) {
		datos, err := utils.DatosMensaje(msg)
		if err != nil {
			return respuestaError(err), nil
		}
		pid, okPID := utils.ExtraerEntero(datos, "pid")
		id, okID := utils.ExtraerEntero(datos, "id")
		if !okPID || !okID {
			return respuestaError(fmt.Errorf("%w: pid e id son obligatorios", ErrArgumentoInvalido)), nil
		}
		args, _ := utils.ExtraerEnteros(datos, "args")
		if len(args) > 6 {
			return respuestaError(fmt.Errorf("%w: más de 6 argumentos", ErrArgumentoInvalido)), nil
		}

		registros := make([]uint64, len(args))
		for i, a := range args {
			registros[i] = uint64(a)
		}
		tf := NuevoTrapframe(uint64(id), registros...)

		utils.AplicarRetardo("syscall", k.config.SyscallDelay)

		finalizada, err := k.Trap(int(pid), tf)
		if err != nil {
			return respuestaError(err), nil
		}
		if finalizada {
			return map[string]interface{}{"status": "FINALIZADO"}, nil
		}
		return map[string]interface{}{"status": "OK", "retorno": tf.Retorno()}, nil
	}
}

// handlerEscribirMemoria: {pid, direccion, datos}
func handlerEscribirMemoria(k *Kernel) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (interface{}, error) {
		datos, err := utils.DatosMensaje(msg)
		if err != nil {
			return respuestaError(err), nil
		}
		pid, okPID := utils.ExtraerEntero(datos, "pid")
		direccion, okDir := utils.ExtraerEntero(datos, "direccion")
		contenido, okDatos := datos["datos"].(string)
		if !okPID || !okDir || !okDatos {
			return respuestaError(fmt.Errorf("%w: pid, direccion y datos son obligatorios", ErrArgumentoInvalido)), nil
		}

		if err := k.EscribirMemoria(int(pid), uint64(direccion), []byte(contenido)); err != nil {
			return respuestaError(err), nil
		}
		utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Escritura - Dir. Lógica: %#x - Tamaño: %d", pid, direccion, len(contenido)))
		return map[string]interface{}{"status": "OK"}, nil
	}
}

// handlerLeerMemoria: {pid, direccion, tamanio}
func handlerLeerMemoria(k *Kernel) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (interface{}, error) {
		datos, err := utils.DatosMensaje(msg)
		if err != nil {
			return respuestaError(err), nil
		}
		pid, okPID := utils.ExtraerEntero(datos, "pid")
		direccion, okDir := utils.ExtraerEntero(datos, "direccion")
		tamanio, okTam := utils.ExtraerEntero(datos, "tamanio")
		if !okPID || !okDir || !okTam {
			return respuestaError(fmt.Errorf("%w: pid, direccion y tamanio son obligatorios", ErrArgumentoInvalido)), nil
		}

		leido, err := k.LeerMemoria(int(pid), uint64(direccion), int(tamanio))
		if err != nil {
			return respuestaError(err), nil
		}
		utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Lectura - Dir. Lógica: %#x - Tamaño: %d", pid, direccion, tamanio))
		return map[string]interface{}{"status": "OK", "datos": string(leido), "hex": hex.EncodeToString(leido)}, nil
	}
}

func handlerMemoryDump(k *Kernel) utils.HTTPHandlerFunc {
	return func(msg *utils.Mensaje) (interface{}, error) {
		datos, err := utils.DatosMensaje(msg)
		if err != nil {
			return respuestaError(err), nil
		}
		pid, ok := utils.ExtraerEntero(datos, "pid")
		if !ok {
			return respuestaError(fmt.Errorf("%w: pid obligatorio", ErrArgumentoInvalido)), nil
		}

		archivos, err := k.Dump(int(pid))
		if err != nil {
			utils.ErrorLog.Error("Error al crear memory dump", "pid", pid, "error", err)
			return respuestaError(err), nil
		}
		return map[string]interface{}{"status": "OK", "archivos": archivos}, nil
	}
}
