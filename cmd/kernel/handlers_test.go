package main

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

func servidorPrueba(t *testing.T, k *Kernel) *utils.HTTPClient {
	t.Helper()
	m := utils.NuevoModulo("Kernel", "")
	registrarHandlers(m, k)
	srv := httptest.NewServer(m.CrearServidor("127.0.0.1", 0).Handler())
	t.Cleanup(srv.Close)
	return utils.NewHTTPClientURL(srv.URL, "CPU-test")
}

func enviar(t *testing.T, c *utils.HTTPClient, tipo int, datos map[string]interface{}) map[string]interface{} {
	t.Helper()
	respuesta, err := c.EnviarHTTPMensaje(tipo, "", datos)
	if err != nil {
		t.Fatalf("mensaje %d: %v", tipo, err)
	}
	m, ok := respuesta.(map[string]interface{})
	if !ok {
		t.Fatalf("respuesta inesperada: %v", respuesta)
	}
	return m
}

func syscallHTTP(t *testing.T, c *utils.HTTPClient, pid int, id int, args ...int64) map[string]interface{} {
	t.Helper()
	if args == nil {
		args = []int64{}
	}
	return enviar(t, c, utils.MensajeSyscall, map[string]interface{}{"pid": pid, "id": id, "args": args})
}

func TestHandlersCicloCompleto(t *testing.T) {
	k, _, consola := nuevoKernelPrueba(t, 32)
	cliente := servidorPrueba(t, k)

	if _, err := cliente.VerificarConexion(); err != nil {
		t.Fatalf("health: %v", err)
	}
	if r := enviar(t, cliente, utils.MensajeHandshake, map[string]interface{}{"nombre": "CPU"}); r["status"] != "OK" {
		t.Fatalf("handshake: %v", r)
	}

	r := enviar(t, cliente, utils.MensajeInicializarProceso, map[string]interface{}{"pid": 5})
	if r["status"] != "OK" {
		t.Fatalf("inicializar: %v", r)
	}
	if pid, _ := utils.ExtraerEntero(r, "pid"); pid != 5 {
		t.Fatalf("pid = %d", pid)
	}

	// store antes de mapear: fallo de página
	r = enviar(t, cliente, utils.MensajeEscribir, map[string]interface{}{"pid": 5, "direccion": 0x1000, "datos": "hola\x00"})
	if r["status"] != "ERROR" {
		t.Errorf("store sin mapear: %v", r)
	}

	r = syscallHTTP(t, cliente, 5, utils.SyscallMmap, 0x1000, utils.TamPagina, 3, 0, -1)
	if ret, _ := utils.ExtraerEntero(r, "retorno"); r["status"] != "OK" || ret != 0 {
		t.Fatalf("mmap: %v", r)
	}

	r = enviar(t, cliente, utils.MensajeEscribir, map[string]interface{}{"pid": 5, "direccion": 0x1000, "datos": "hola\x00"})
	if r["status"] != "OK" {
		t.Fatalf("store: %v", r)
	}
	r = enviar(t, cliente, utils.MensajeLeer, map[string]interface{}{"pid": 5, "direccion": 0x1000, "tamanio": 4})
	if r["datos"] != "hola" || r["hex"] != "686f6c61" {
		t.Errorf("load: %v", r)
	}

	r = syscallHTTP(t, cliente, 5, utils.SyscallWrite, utils.DescriptorStdout, 0x1000, 50)
	if ret, _ := utils.ExtraerEntero(r, "retorno"); ret != 4 {
		t.Errorf("write: %v", r)
	}
	if consola.String() != "hola" {
		t.Errorf("consola = %q", consola.String())
	}

	r = syscallHTTP(t, cliente, 5, 999)
	if ret, _ := utils.ExtraerEntero(r, "retorno"); r["status"] != "OK" || ret != -1 {
		t.Errorf("syscall desconocida: %v", r)
	}

	r = syscallHTTP(t, cliente, 5, utils.SyscallExit, 0)
	if r["status"] != "FINALIZADO" {
		t.Errorf("exit: %v", r)
	}
	if k.MarcosLibres() != 32 {
		t.Errorf("marcos libres después de exit = %d", k.MarcosLibres())
	}

	r = syscallHTTP(t, cliente, 5, utils.SyscallYield)
	if r["status"] != "ERROR" {
		t.Errorf("syscall de una tarea finalizada: %v", r)
	}
}

func TestHandlerSyscallDatosInvalidos(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 16)
	cliente := servidorPrueba(t, k)
	crearTareaPrueba(t, k, 0)

	tests := []struct {
		name  string
		datos map[string]interface{}
	}{
		{"sin id", map[string]interface{}{"pid": 0}},
		{"sin pid", map[string]interface{}{"id": utils.SyscallYield}},
		{"demasiados argumentos", map[string]interface{}{"pid": 0, "id": utils.SyscallYield, "args": []int64{1, 2, 3, 4, 5, 6, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := enviar(t, cliente, utils.MensajeSyscall, tt.datos); r["status"] != "ERROR" {
				t.Errorf("respuesta = %v, se esperaba ERROR", r)
			}
		})
	}
}

func TestHandlerMemoryDump(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	k.config.DumpImage = true
	cliente := servidorPrueba(t, k)
	crearTareaPrueba(t, k, 2)
	invocar(t, k, 2, utils.SyscallMmap, 0x1000, 3*utils.TamPagina, 5, 0, 0)
	if err := k.EscribirMemoria(2, 0x1000, []byte("dump")); err == nil {
		t.Fatal("se pudo escribir una página sin permiso de escritura")
	}

	r := enviar(t, cliente, utils.MensajeMemoryDump, map[string]interface{}{"pid": 2})
	if r["status"] != "OK" {
		t.Fatalf("dump: %v", r)
	}
	archivos, _ := r["archivos"].([]interface{})
	if len(archivos) != 2 {
		t.Fatalf("archivos = %v, se esperaban .dmp y .png", r["archivos"])
	}
	info, err := os.Stat(archivos[0].(string))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 3*utils.TamPagina {
		t.Errorf("tamaño del dump = %d, se esperaba %d", info.Size(), 3*utils.TamPagina)
	}
	if _, err := os.Stat(archivos[1].(string)); err != nil {
		t.Errorf("no se generó el mapa: %v", err)
	}

	if r := enviar(t, cliente, utils.MensajeMemoryDump, map[string]interface{}{"pid": 9}); r["status"] != "ERROR" {
		t.Errorf("dump de tarea inexistente: %v", r)
	}
}

func TestViolacionInvarianteDetieneLaMaquina(t *testing.T) {
	codigo := -1
	detenerMaquina = func(c int) { codigo = c }
	t.Cleanup(func() { detenerMaquina = os.Exit })

	k, _, _ := nuevoKernelPrueba(t, 32)
	cliente := servidorPrueba(t, k)
	tarea := crearTareaPrueba(t, k, 0)
	invocar(t, k, 0, utils.SyscallMmap, 0x1000, utils.TamPagina, 3, 0, 0)

	entrada, _ := tarea.Tabla.recorrer(0x1000, false)
	*entrada = pteDesdeMarco(entrada.marco()) | pteValida

	_, err := cliente.EnviarHTTPMensaje(utils.MensajeSyscall, "munmap", map[string]interface{}{
		"pid": 0, "id": utils.SyscallMunmap, "args": []int64{0x1000, utils.TamPagina},
	})
	if err == nil {
		t.Error("se esperaba un error HTTP")
	}
	if codigo != 1 {
		t.Errorf("código de detención = %d, se esperaba 1", codigo)
	}

	// el núcleo quedó libre para el próximo trap
	if _, existe := k.Tarea(0); !existe {
		t.Error("la tarea desapareció")
	}
}
