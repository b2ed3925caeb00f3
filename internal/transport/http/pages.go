package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// loginPageHTML is a self-contained login form for environments where the
// regular frontend is not deployed, such as staging databases and support
// sessions. It talks to the same /v1/auth endpoints as the frontend and
// relies on the session cookie, so nothing is stored client side.
var loginPageHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Novalink Admin</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f4f6f8; color: #333; display: flex; min-height: 100vh; align-items: center; justify-content: center; }
.card { background: #fff; padding: 32px; border-radius: 8px; width: 90%; max-width: 380px; box-shadow: 0 4px 16px rgba(0,0,0,0.1); }
h1 { font-size: 20px; margin-top: 0; }
input { width: 100%; box-sizing: border-box; padding: 10px; margin: 8px 0; border: 1px solid #ccc; border-radius: 4px; }
button { width: 100%; padding: 12px; margin-top: 12px; font-size: 15px; border: none; border-radius: 4px; cursor: pointer; background: #2c6e49; color: #fff; }
button:hover { background: #1f5236; }
.status { margin-top: 12px; font-size: 14px; min-height: 18px; }
.status.error { color: #b3261e; }
ul { list-style: none; margin: 4px 0; padding: 0; border: 1px solid #ddd; border-radius: 4px; max-height: 140px; overflow-y: auto; }
li { padding: 8px 10px; cursor: pointer; }
li:hover { background: #eef3f0; }
</style>
</head>
<body>
<div class="card">
  <h1>Novalink Admin</h1>
  <input id="search" placeholder="Empresa (escriba al menos 3 letras)" autocomplete="off" />
  <ul id="tenants" hidden></ul>
  <input id="username" placeholder="Usuario" autocomplete="username" />
  <input id="password" type="password" placeholder="Contrase&ntilde;a" autocomplete="current-password" />
  <button onclick="login()">Ingresar</button>
  <div id="status" class="status"></div>
</div>
<script>
let selectedTenant = null;
const search = document.getElementById('search');
const list = document.getElementById('tenants');
const status = document.getElementById('status');

search.addEventListener('input', async () => {
  selectedTenant = null;
  const text = search.value.trim();
  if (text.length < 3) { list.hidden = true; return; }
  const response = await fetch('/v1/auth/tenants?search=' + encodeURIComponent(text));
  const tenants = await response.json();
  list.innerHTML = '';
  tenants.forEach(t => {
    const item = document.createElement('li');
    item.textContent = t.name;
    item.onclick = () => { selectedTenant = t.id; search.value = t.name; list.hidden = true; };
    list.appendChild(item);
  });
  list.hidden = tenants.length === 0;
});

async function login() {
  status.className = 'status';
  status.textContent = '';
  if (!selectedTenant) { showError('Seleccione una empresa de la lista.'); return; }
  const response = await fetch('/v1/auth/login', {
    method: 'POST',
    credentials: 'include',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({
      tenant: selectedTenant,
      username: document.getElementById('username').value,
      password: document.getElementById('password').value,
    }),
  });
  const data = await response.json();
  if (!response.ok) { showError(data.error || 'No se pudo iniciar la sesión.'); return; }
  if (data.must_change_password) {
    status.textContent = 'Sesión iniciada. Su contraseña ha expirado, debe cambiarla.';
  } else {
    status.textContent = 'Sesión iniciada como ' + data.user.name + ' (' + data.tenant.name + ').';
  }
}

function showError(message) {
  status.className = 'status error';
  status.textContent = message;
}
</script>
</body>
</html>`

// RegisterPages serves the fallback login page at the root path.
func RegisterPages(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, loginPageHTML)
	})
}
