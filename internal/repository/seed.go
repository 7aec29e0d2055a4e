package repository

import "github.com/papayaah/invoicees/internal/entity"

var defaultDocumentation = []entity.Documentation{
	{
		Topic: "Getting Started",
		Content: `Welcome to Invoicees! Create invoices by describing them in plain language.

Type what you need at the prompt:
- "Create an invoice for John Smith"
- "Add an item: Web Development $1500"
- "Set my business name to Acme Corp"
- "Change the layout to minimalist"

The invoice is shown again after every change.`,
		Keywords: []string{"help", "start", "introduction", "guide", "how to"},
	},
	{
		Topic: "Adding Business Information",
		Content: `To add your business details, say:
- "My business name is [name]"
- "My email is [email]"
- "My address is [address]"
- "My phone is [phone]"

Example: "Set my business as Tech Solutions Inc, email: info@techsolutions.com, phone: 555-0123"`,
		Keywords: []string{"business", "company", "seller", "from", "my info"},
	},
	{
		Topic: "Adding Client Information",
		Content: `To add client details, say:
- "Client name is [name]"
- "Bill to [name]"
- "Client email: [email]"
- "Client address: [address]"

Example: "Create invoice for Sarah Johnson at sarah@example.com"`,
		Keywords: []string{"client", "customer", "bill to", "buyer", "recipient"},
	},
	{
		Topic: "Adding Items",
		Content: `To add items to your invoice:
- "Add item: [description] $[price] x [quantity]"
- "Add [description] for $[price]"
- "10 hours of consulting at $150/hour"

Example: "Add web design service $2500" or "Add 5 widgets at $25 each"`,
		Keywords: []string{"item", "product", "service", "add", "line item"},
	},
	{
		Topic: "Bank Details",
		Content: `To add payment information:
- "Bank name: [name]"
- "Account number: [number]"
- "Account type: [checking/savings]"
- "Branch: [branch name]"

Example: "Set bank to Wells Fargo, account 12345678, checking"`,
		Keywords: []string{"bank", "payment", "account", "transfer"},
	},
	{
		Topic: "Layout Templates",
		Content: `Available invoice layouts:
- Minimalist: Clean and simple
- Left Header: Business info on left
- Centered: All content centered
- Compact Grid: Space-efficient design

Say: "Switch to [layout name]" or "Change layout to minimalist"`,
		Keywords: []string{"layout", "template", "design", "style", "format"},
	},
	{
		Topic: "Exporting Invoice",
		Content: `To export your invoice:
- "/export" writes the current invoice to a spreadsheet
- "/export <id>" exports a saved invoice

The export includes every field and line item with the computed total.`,
		Keywords: []string{"export", "pdf", "download", "save", "print", "xlsx", "spreadsheet"},
	},
	{
		Topic: "Supported Commands",
		Content: `This app only processes invoice-related requests:
- Business and client information
- Adding invoice items
- Bank and payment details
- Layout changes
- Export

Session commands: /list, /show <id>, /export [id], /remove <index>, /delete <id>, /reset, /new, /quit`,
		Keywords: []string{"commands", "what can", "features", "capabilities"},
	},
}
