package script_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/dombind/native"
	"github.com/wippyai/dombind/script"
)

func newRuntime(t *testing.T, opts ...native.Option) (*script.Runtime, *native.Engine, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	e, err := native.New(ctx, opts...)
	if err != nil {
		t.Fatalf("native.New failed: %v", err)
	}
	var out bytes.Buffer
	rt := script.New(e.Context(), script.WithStdout(&out))
	t.Cleanup(func() {
		rt.Close()
		if err := e.Close(ctx); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return rt, e, &out
}

func run(t *testing.T, rt *script.Runtime, src string) any {
	t.Helper()
	v, err := rt.Run("test.js", src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return v.Export()
}

func TestRun_Console(t *testing.T) {
	rt, _, out := newRuntime(t)

	run(t, rt, `console.log("a", 1, true); console.error("bad")`)

	want := "a 1 true\n[error] bad\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_BuildTree(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const ul = document.createElement("UL");
		for (const s of ["a", "b", "c"]) {
			const li = document.createElement("li");
			li.appendChild(document.createTextNode(s));
			ul.appendChild(li);
		}
		document.body.appendChild(ul);
		ul.childNodes.map(n => n.nodeName + ":" + n.textContent).join(",") + "|" + ul.tagName
	`)

	if got != "LI:a,LI:b,LI:c|UL" {
		t.Fatalf("tree = %v", got)
	}
}

func TestRun_NodeIdentity(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const d = document.createElement("div");
		const r = document.body.appendChild(d);
		[r === d, document.body.lastChild === d, d.parentNode === document.body,
		 document.documentElement === document.body.parentNode, d.isSameNode(r)]
	`)

	want := []any{true, true, true, true, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NativeExceptionThrown(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const stranger = document.createElement("p");
		let msg = "";
		let name = "";
		try {
			document.body.removeChild(stranger);
		} catch (e) {
			msg = e.message;
			name = e.domName;
		}
		[name, msg, document.body.childNodes.length]
	`)

	want := []any{
		"NotFoundError",
		"NotFoundError: The node to be removed is not a child of this node.",
		int64(0),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("exception mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_UncaughtExceptionFailsRun(t *testing.T) {
	rt, _, _ := newRuntime(t)

	_, err := rt.Run("bad.js", `document.body.appendChild(document)`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HierarchyRequestError") {
		t.Fatalf("error %q does not carry the native message", err)
	}

	if _, err := rt.Run("syntax.js", `let = ;`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestRun_Attributes(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const a = document.createElement("a");
		const before = a.getAttribute("href");
		a.setAttribute("HREF", "/x");
		a.id = "link";
		[before, a.getAttribute("href"), a.hasAttribute("href"), a.id]
	`)

	want := []any{nil, "/x", true, "link"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Hashchange(t *testing.T) {
	rt, e, out := newRuntime(t, native.WithURL("https://x/#b"))

	run(t, rt, `
		let kept;
		window.addEventListener("hashchange", ev => {
			kept = ev;
			console.log(ev.type, ev.oldURL, ev.newURL, ev.isTrusted, ev.target === window);
		});
		window.location.hash = "#a";
	`)

	want := "hashchange https://x/#b https://x/#a true true\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if e.URL() != "https://x/#a" {
		t.Fatalf("URL = %q", e.URL())
	}

	if got := run(t, rt, `kept.newURL + " " + window.location.hash`); got != "https://x/#a #a" {
		t.Fatalf("kept event = %v", got)
	}
}

func TestRun_ListenerFromGoDispatch(t *testing.T) {
	rt, e, out := newRuntime(t)

	run(t, rt, `
		function onClose(ev) { console.log(ev.code, ev.reason, ev.wasClean); }
		window.addEventListener("close", onClose);
		window.addEventListener("close", onClose);
	`)
	if err := e.FireClose(1000, "bye", true); err != nil {
		t.Fatal(err)
	}
	if out.String() != "1000 bye true\n" {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	run(t, rt, `window.removeEventListener("close", onClose)`)
	if err := e.FireClose(1001, "again", false); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("removed listener ran: %q", out.String())
	}
	if n := e.Context().ListenerCount(); n != 0 {
		t.Fatalf("ListenerCount = %d, want 0", n)
	}

	// A function that was never added is still handed to the engine.
	run(t, rt, `window.removeEventListener("close", function () {})`)
}

func TestRun_NulInArgumentThrows(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const p = document.createElement("p");
		p.setAttribute("title", "ok");
		let threw = false;
		try { p.setAttribute("title", "a\u0000b"); } catch (e) { threw = e instanceof Error; }
		threw && p.getAttribute("title") === "ok"
	`)
	if got != true {
		t.Fatalf("result = %v, want true", got)
	}
}

func TestRun_CreatedEventDispatch(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const order = [];
		const d = document.createElement("div");
		document.body.appendChild(d);
		document.body.addEventListener("ping", () => order.push("capture"), true);
		document.body.addEventListener("ping", () => order.push("bubble"));
		d.addEventListener("ping", ev => {
			order.push("target");
			ev.preventDefault();
		}, {once: true});

		const ev = document.createEvent("Event");
		ev.initEvent("ping", true, true);
		const first = d.dispatchEvent(ev);
		const second = d.dispatchEvent(ev);
		[order.join(","), first, second, ev.defaultPrevented, ev.isTrusted]
	`)

	want := []any{"capture,target,bubble,capture,bubble", false, false, true, false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ListenerExceptionReported(t *testing.T) {
	rt, e, out := newRuntime(t)

	run(t, rt, `
		window.addEventListener("close", () => { throw new Error("boom"); });
		window.addEventListener("close", () => console.log("second"));
	`)
	if err := e.FireClose(1000, "", true); err != nil {
		t.Fatal(err)
	}

	if out.String() != "second\n" {
		t.Fatalf("output = %q", out.String())
	}
	errs := rt.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "boom") {
		t.Fatalf("Errors() = %v", errs)
	}
}

func TestRun_TypeErrors(t *testing.T) {
	rt, _, _ := newRuntime(t)

	got := run(t, rt, `
		const errs = [];
		try { document.body.appendChild({}); } catch (e) { errs.push(e instanceof TypeError); }
		try { window.dispatchEvent({}); } catch (e) { errs.push(e instanceof TypeError); }
		try { window.addEventListener("x", 1); } catch (e) { errs.push("unexpected"); }
		errs
	`)

	if diff := cmp.Diff([]any{true, true}, got); diff != "" {
		t.Fatalf("type errors mismatch (-want +got):\n%s", diff)
	}
}

func TestRunContext_Interrupted(t *testing.T) {
	rt, _, _ := newRuntime(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := rt.RunContext(ctx, "loop.js", `for (;;) {}`)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Fatalf("RunContext = %v", err)
	}

	if got := run(t, rt, `1 + 1`); got != int64(2) {
		t.Fatalf("runtime unusable after interrupt: %v", got)
	}
}

func TestRun_Closed(t *testing.T) {
	rt, _, _ := newRuntime(t)
	rt.Close()

	if _, err := rt.Run("x.js", `1`); err == nil {
		t.Fatal("expected error from closed runtime")
	}
}
