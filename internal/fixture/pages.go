// internal/fixture/pages.go
package fixture

import "html/template"

type loginData struct {
	Error    string
	Username string
}

type homeData struct {
	Username string
}

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign In | Harness Demo</title></head>
<body>
  <form id="loginForm" method="post" action="/login">
    <label for="username">Username</label>
    <input id="username" name="username" type="text" value="{{.Username}}">
    <label for="password">Password</label>
    <input id="password" name="password" type="password">
    <button id="Login" type="submit">Log In</button>
  </form>
  {{if .Error}}<p id="error" role="alert">{{.Error}}</p>{{end}}
</body>
</html>`))

var homePage = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head><title>Home | Harness Demo</title></head>
<body>
  <header>
    <button id="appLauncher" type="button" title="App Launcher">&#9783;</button>
    <span id="welcome">Welcome, {{.Username}}</span>
    <a id="logout" href="/logout">Log out</a>
  </header>
  <ul id="apps">
    <li class="app">Accounts</li>
    <li class="app">Contacts</li>
    <li class="app">Reports</li>
  </ul>
</body>
</html>`))

var widgetsPage = template.Must(template.New("widgets").Parse(`<!DOCTYPE html>
<html>
<head><title>Widgets | Harness Demo</title></head>
<body>
  <input id="name" type="text" value="initial">
  <a id="link" href="/frame" data-role="">Frame page</a>

  <select id="color">
    <option value="r">Red</option>
    <option value="g">Green</option>
    <option value="b"> Blue </option>
  </select>

  <button id="alertBtn" onclick="alert('Hello from the fixture'); document.getElementById('result').textContent = 'alerted';">Alert</button>
  <button id="confirmBtn" onclick="document.getElementById('result').textContent = confirm('Proceed?') ? 'confirmed' : 'canceled';">Confirm</button>
  <button id="promptBtn" onclick="const v = prompt('Your name?', 'guest'); document.getElementById('result').textContent = v === null ? 'no answer' : v;">Prompt</button>
  <p id="result"></p>

  <button id="disabledBtn" disabled>Disabled</button>
  <div id="hidden" style="display:none">Hidden</div>
  <button id="reveal" onclick="setTimeout(() => { document.getElementById('late').style.display = 'block'; document.title = 'Widgets | Revealed'; }, 300)">Reveal</button>
  <div id="late" style="display:none">Late content</div>

  <ul>
    <li class="item">One</li>
    <li class="item">  Two  </li>
    <li class="item"></li>
    <li class="item">Three</li>
  </ul>

  <iframe id="frame" src="/frame"></iframe>
  <div id="spacer" style="height:3000px"></div>
  <div id="footer">Footer</div>
</body>
</html>`))

var framePage = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
<head><title>Frame | Harness Demo</title></head>
<body><p id="inner">Inside the frame</p></body>
</html>`))
