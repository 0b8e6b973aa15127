package render

// widgetCSS is scoped to the widget surface. Every colour and the font come
// from --stocks-* variables so hosts can theme through the allow-list.
const widgetCSS = `:host{display:inline-block}
.widget{display:flex;justify-content:space-between;align-items:center;gap:12px;padding:12px;border-radius:8px;border:1px solid #ddd;background:var(--stocks-bg-color,#fff);color:var(--stocks-text-color,#111);font-family:var(--stocks-font-family,system-ui,sans-serif)}
.widgetCompany{display:flex;gap:6px;align-items:baseline}
.companyName{font-weight:600}
.symbol{color:var(--stocks-primary-color,#0066ff)}
.symbol[data-clickable="true"]{cursor:pointer}
.price{font-size:1.4em;font-weight:600}
.change.up{color:var(--stocks-up-color,#16a34a)}
.change.down{color:var(--stocks-down-color,#dc2626)}
.timestamp{font-size:.75em;opacity:.7}
.error{font-size:.8em;color:var(--stocks-down-color,#dc2626)}
.error:empty{display:none}
.sparkline{min-width:120px;min-height:30px}
` + spinnerCSS

const spinnerCSS = `.spinner{width:16px;height:16px;border-radius:50%;border:3px solid color-mix(in srgb,var(--stocks-primary-color,#0066ff) 30%,transparent);border-top-color:var(--stocks-primary-color,#0066ff);animation:spin 1.2s linear infinite;margin:8px 0}
.spinner.has-error{animation:none;border-color:var(--stocks-down-color,#dc2626)}
@keyframes spin{to{transform:rotate(360deg)}}
`

// prerenderCSS styles the server shell shown before the widget mounts.
const prerenderCSS = `.widget{display:flex;flex-flow:column;justify-content:center;align-items:center;padding:12px;border-radius:8px;border:1px solid #ddd}
` + spinnerCSS
